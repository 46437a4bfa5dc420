package usecase

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cruz1171975/amazonenrichment/internal/domain"
)

// RenderListing renders a listing as markdown-ish text for review.
// HTML descriptions are converted to plain paragraphs.
func RenderListing(listing *domain.ListingDraft) (string, error) {
	var lines []string
	if title := strings.TrimSpace(listing.Title); title != "" {
		lines = append(lines, "# Title", title, "")
	}
	if len(listing.Bullets) > 0 {
		lines = append(lines, "# Bullets")
		for _, b := range listing.Bullets {
			lines = append(lines, "- "+strings.TrimSpace(b))
		}
		lines = append(lines, "")
	}
	if desc := strings.TrimSpace(listing.Description); desc != "" {
		text, err := DescriptionText(desc)
		if err != nil {
			return "", err
		}
		lines = append(lines, "# Description", text, "")
	}
	if backend := strings.TrimSpace(listing.BackendSearchTerms); backend != "" {
		lines = append(lines, "# Backend Search Terms", backend, "")
	}
	if md := strings.TrimSpace(listing.APlusMarkdown); md != "" {
		lines = append(lines, md, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n", nil
}

// DescriptionText converts an HTML description fragment into plain
// paragraphs; plain-text descriptions are returned unchanged.
func DescriptionText(desc string) (string, error) {
	if !strings.HasPrefix(strings.TrimSpace(desc), "<") {
		return desc, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(desc))
	if err != nil {
		return "", fmt.Errorf("failed to parse description HTML: %w", err)
	}

	var paragraphs []string
	doc.Find("p, ul").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "ul" {
			s.Find("li").Each(func(_ int, li *goquery.Selection) {
				if text := Clean(li.Text()); text != "" {
					paragraphs = append(paragraphs, "- "+text)
				}
			})
			return
		}
		if text := Clean(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		return Clean(doc.Text()), nil
	}
	return strings.Join(paragraphs, "\n\n"), nil
}
