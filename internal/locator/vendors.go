package locator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/gridline-data/locator-cli/internal/model"
)

// DefaultRegistry assembles the built-in vendor recipes. The mapping is
// constructed here, explicitly, and handed to the engine. A new vendor is
// one Vendor value and one Register call.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Generac())
	r.Register(Kohler())
	r.Register(Carrier())
	r.Register(Enphase())
	r.Register(TeslaEnergy())
	return r
}

// jsonDealer is the common shape of the JSON locator APIs (Generac, Kohler,
// Enphase all return minor variants of it).
type jsonDealer struct {
	Name        string   `json:"name"`
	Phone       string   `json:"phone"`
	Website     string   `json:"website"`
	Street      string   `json:"address1"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	Zip         string   `json:"zip"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"reviewCount"`
	Tier        string   `json:"tier"`
	Badges      []string `json:"badges"`
}

func (j jsonDealer) toDealer() model.Dealer {
	return model.Dealer{
		Name:           strings.TrimSpace(j.Name),
		Phone:          strings.TrimSpace(j.Phone),
		Website:        strings.TrimSpace(j.Website),
		Street:         j.Street,
		City:           j.City,
		State:          strings.ToUpper(strings.TrimSpace(j.State)),
		Zip:            j.Zip,
		AddressFull:    joinAddress(j.Street, j.City, j.State, j.Zip),
		Rating:         j.Rating,
		ReviewCount:    j.ReviewCount,
		Tier:           strings.TrimSpace(j.Tier),
		Certifications: j.Badges,
	}
}

func joinAddress(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// parseJSONDealers decodes the {"dealers":[...]} envelope shared by the
// JSON locator APIs.
func parseJSONDealers(vendor string, body []byte) ([]model.Dealer, error) {
	var envelope struct {
		Dealers []jsonDealer `json:"dealers"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, eris.Wrapf(err, "locator: parse %s response", vendor)
	}
	out := make([]model.Dealer, 0, len(envelope.Dealers))
	for _, jd := range envelope.Dealers {
		d := jd.toDealer()
		if d.Name == "" {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// Generac is the Generac standby-generator dealer locator (JSON API).
func Generac() Vendor {
	return Vendor{
		Name: "generac",
		Mode: ModeHTTP,
		URL: func(zip string) string {
			return fmt.Sprintf("https://www.generac.com/api/dealers?postalCode=%s&radius=50", zip)
		},
		Parse: func(body []byte, _ string) ([]model.Dealer, error) {
			return parseJSONDealers("generac", body)
		},
	}
}

// Kohler is the Kohler generator dealer locator (JSON API).
func Kohler() Vendor {
	return Vendor{
		Name: "kohler",
		Mode: ModeHTTP,
		URL: func(zip string) string {
			return fmt.Sprintf("https://kohlerhomeenergy.com/api/locator?zip=%s", zip)
		},
		Parse: func(body []byte, _ string) ([]model.Dealer, error) {
			return parseJSONDealers("kohler", body)
		},
	}
}

// Enphase is the Enphase certified-installer locator (JSON API).
func Enphase() Vendor {
	return Vendor{
		Name: "enphase",
		Mode: ModeHTTP,
		URL: func(zip string) string {
			return fmt.Sprintf("https://enphase.com/api/installer-locator?location=%s", zip)
		},
		Parse: func(body []byte, _ string) ([]model.Dealer, error) {
			return parseJSONDealers("enphase", body)
		},
	}
}

// Carrier is the Carrier HVAC dealer locator (server-rendered HTML).
func Carrier() Vendor {
	return Vendor{
		Name: "carrier",
		Mode: ModeHTTP,
		URL: func(zip string) string {
			return fmt.Sprintf("https://www.carrier.com/residential/en/us/find-a-dealer/?zipcode=%s", zip)
		},
		Parse: parseCarrierHTML,
	}
}

// parseCarrierHTML extracts dealer cards from the Carrier results page.
func parseCarrierHTML(body []byte, _ string) ([]model.Dealer, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "locator: parse carrier html")
	}

	var out []model.Dealer
	doc.Find(".dealer-card").Each(func(_ int, card *goquery.Selection) {
		d := model.Dealer{
			Name:    strings.TrimSpace(card.Find(".dealer-name").Text()),
			Phone:   strings.TrimSpace(card.Find(".dealer-phone").Text()),
			Tier:    strings.TrimSpace(card.Find(".dealer-tier").Text()),
			Website: strings.TrimSpace(card.Find("a.dealer-website").AttrOr("href", "")),
		}
		if d.Name == "" {
			return
		}
		addr := strings.TrimSpace(card.Find(".dealer-address").Text())
		d.AddressFull = addr
		d.Street, d.City, d.State, d.Zip = splitAddress(addr)
		card.Find(".dealer-badge").Each(func(_ int, b *goquery.Selection) {
			if badge := strings.TrimSpace(b.Text()); badge != "" {
				d.Certifications = append(d.Certifications, badge)
			}
		})
		out = append(out, d)
	})
	return out, nil
}

// TeslaEnergy is the Tesla certified-installer locator. The list only
// renders client-side, so it requires browser mode; HTTP runs fail with
// ErrModeUnsupported rather than silently returning nothing.
func TeslaEnergy() Vendor {
	return Vendor{
		Name: "tesla-energy",
		Mode: ModeBrowser,
		URL: func(zip string) string {
			return fmt.Sprintf("https://www.tesla.com/support/certified-installers?zip=%s", zip)
		},
		WaitSelector: ".installer-result",
		Parse:        parseTeslaHTML,
	}
}

// parseTeslaHTML extracts installer rows from the rendered Tesla page.
func parseTeslaHTML(body []byte, _ string) ([]model.Dealer, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "locator: parse tesla html")
	}

	var out []model.Dealer
	doc.Find(".installer-result").Each(func(_ int, row *goquery.Selection) {
		d := model.Dealer{
			Name:    strings.TrimSpace(row.Find(".installer-name").Text()),
			Phone:   strings.TrimSpace(row.Find(".installer-phone").Text()),
			Website: strings.TrimSpace(row.Find("a.installer-link").AttrOr("href", "")),
			Tier:    strings.TrimSpace(row.Find(".installer-tier").Text()),
			City:    strings.TrimSpace(row.Find(".installer-city").Text()),
			State:   strings.ToUpper(strings.TrimSpace(row.Find(".installer-state").Text())),
		}
		if d.Name == "" {
			return
		}
		out = append(out, d)
	})
	return out, nil
}

// splitAddress breaks a "street, city, ST zip" display address into parts.
// Best effort: anything that doesn't fit the shape lands in street.
func splitAddress(addr string) (street, city, state, zip string) {
	parts := strings.Split(addr, ",")
	if len(parts) < 3 {
		return addr, "", "", ""
	}
	street = strings.TrimSpace(strings.Join(parts[:len(parts)-2], ","))
	city = strings.TrimSpace(parts[len(parts)-2])

	last := strings.Fields(strings.TrimSpace(parts[len(parts)-1]))
	if len(last) >= 1 && len(last[0]) == 2 {
		state = strings.ToUpper(last[0])
	}
	if len(last) >= 2 {
		zip = last[1]
	}
	return street, city, state, zip
}
