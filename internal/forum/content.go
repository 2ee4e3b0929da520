// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package forum

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// ExcerptLength is the maximum length of an article preview, in characters.
const ExcerptLength = 100

// VisibleText returns the text a reader would see in an HTML fragment,
// with whitespace collapsed. Script and style contents are ignored.
func VisibleText(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", err
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

// Excerpt returns the first ExcerptLength characters of the visible text.
func Excerpt(content string) string {
	text, err := VisibleText(content)
	if err != nil {
		return ""
	}
	if utf8.RuneCountInString(text) <= ExcerptLength {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:ExcerptLength])) + "…"
}
