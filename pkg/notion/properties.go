package notion

import (
	"strings"

	"github.com/jomei/notionapi"
)

// BuildRowProperties converts a flat key-value row to Notion page properties.
// "Name" becomes the title property and "URL" a url property; everything else
// is stored as rich_text. Empty values are skipped so Notion does not render
// blank property rows.
func BuildRowProperties(row map[string]string) notionapi.Properties {
	props := make(notionapi.Properties)
	for k, v := range row {
		if v == "" {
			continue
		}
		switch {
		case strings.EqualFold(k, "Name"):
			props[k] = notionapi.TitleProperty{
				Type: notionapi.PropertyTypeTitle,
				Title: []notionapi.RichText{
					{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: v}},
				},
			}
		case strings.EqualFold(k, "URL"):
			props[k] = notionapi.URLProperty{
				Type: notionapi.PropertyTypeURL,
				URL:  NormalizeURL(v),
			}
		default:
			props[k] = notionapi.RichTextProperty{
				Type: notionapi.PropertyTypeRichText,
				RichText: []notionapi.RichText{
					{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: v}},
				},
			}
		}
	}
	return props
}

// StatusProperty builds a Notion status property with the given name.
func StatusProperty(name string) notionapi.StatusProperty {
	return notionapi.StatusProperty{
		Status: notionapi.Status{Name: name},
	}
}

// NormalizeURL ensures a domain has an https:// scheme prefix.
func NormalizeURL(domain string) string {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return ""
	}
	if !strings.Contains(domain, "://") {
		return "https://" + domain
	}
	return domain
}
