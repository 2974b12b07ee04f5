package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
	"property-import-backend/internal/models"
)

// rawCard holds the text pulled from one listing card in the page.
type rawCard struct {
	Title       string   `json:"title"`
	Price       string   `json:"price"`
	Location    string   `json:"location"`
	Bedrooms    string   `json:"bedrooms"`
	Bathrooms   string   `json:"bathrooms"`
	Area        string   `json:"area"`
	Description string   `json:"description"`
	Link        string   `json:"link"`
	Images      []string `json:"images"`
}

// BrowserSource renders a listings page in headless Chrome and extracts
// cards with CSS selectors.
type BrowserSource struct {
	cfg SourceConfig
	now func() time.Time
}

func NewBrowserSource(cfg SourceConfig) *BrowserSource {
	return &BrowserSource{cfg: cfg, now: time.Now}
}

func (b *BrowserSource) Name() string { return b.cfg.Name }

func (b *BrowserSource) FetchListings(ctx context.Context) ([]models.ScrapedListing, error) {
	script, err := extractionScript(b.cfg.Selectors)
	if err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	execPath := b.cfg.ExecPath
	if execPath == "" {
		execPath = os.Getenv("CHROME_BIN")
	}
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	timeout := b.cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	wait := b.cfg.Wait
	if wait <= 0 {
		wait = 3 * time.Second
	}

	var cards []rawCard
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(b.cfg.URL),
		chromedp.Sleep(wait),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(wait/2),
		chromedp.Evaluate(script, &cards),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", b.cfg.URL, err)
	}

	return b.toListings(cards), nil
}

func (b *BrowserSource) toListings(cards []rawCard) []models.ScrapedListing {
	scrapedAt := b.now().UTC()
	listings := make([]models.ScrapedListing, 0, len(cards))
	for _, card := range cards {
		title := normaliseText(card.Title)
		if title == "" {
			continue
		}
		images := make([]string, 0, len(card.Images))
		for _, img := range card.Images {
			if img != "" {
				images = append(images, img)
			}
		}
		listings = append(listings, models.ScrapedListing{
			Title:              title,
			Price:              parsePrice(card.Price),
			Currency:           b.cfg.Currency,
			Location:           normaliseText(card.Location),
			Bedrooms:           parseCount(card.Bedrooms),
			Bathrooms:          parseCount(card.Bathrooms),
			Area:               normaliseText(card.Area),
			Description:        normaliseText(card.Description),
			Images:             images,
			Source:             b.cfg.Name,
			SourceURL:          card.Link,
			ScrapedAt:          scrapedAt,
			VerificationStatus: models.VerificationUnverified,
		})
	}
	return listings
}

// extractionScript builds the page-side JS. Selectors are embedded as JSON
// string literals.
func extractionScript(sel Selectors) (string, error) {
	encoded, err := json.Marshal(sel)
	if err != nil {
		return "", fmt.Errorf("failed to encode selectors: %w", err)
	}
	return fmt.Sprintf(`
		(function() {
			var sel = %s;
			function text(card, s) {
				if (!s) return '';
				var el = card.querySelector(s);
				return el ? (el.textContent || '').trim() : '';
			}
			var out = [];
			var cards = document.querySelectorAll(sel.Item);
			for (var i = 0; i < cards.length; i++) {
				var card = cards[i];
				var link = sel.Link ? card.querySelector(sel.Link) : null;
				var images = [];
				if (sel.Image) {
					var imgs = card.querySelectorAll(sel.Image);
					for (var j = 0; j < imgs.length; j++) {
						var src = imgs[j].currentSrc || imgs[j].src || imgs[j].getAttribute('data-src') || '';
						if (src) images.push(src);
					}
				}
				out.push({
					title: text(card, sel.Title),
					price: text(card, sel.Price),
					location: text(card, sel.Location),
					bedrooms: text(card, sel.Bedrooms),
					bathrooms: text(card, sel.Bathrooms),
					area: text(card, sel.Area),
					description: text(card, sel.Description),
					link: link && link.href ? link.href : '',
					images: images
				});
			}
			return out;
		})()
	`, encoded), nil
}
