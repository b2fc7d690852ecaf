package integration

import (
	"errors"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/abelzeko/transit-board/internal/entities"
)

// ErrNoFragments means the document had no node matching the pipeline's selector
var ErrNoFragments = errors.New("no extractable fragments in document")

const (
	scheduledMarker   = "定刻"
	arrivalMarker     = "到着予定"
	companionMarker   = "分後に到着"
	transitTimeMarker = "所要時間"
)

var transitMinutesRe = regexp.MustCompile(`(\d+)`)

// ExtractPredictionGroups yields one fragment group per bus list item, in document order
func ExtractPredictionGroups(doc *goquery.Document) ([]entities.FragmentGroup, error) {
	items := doc.Find("li.plotList")
	if items.Length() == 0 {
		return nil, ErrNoFragments
	}

	groups := make([]entities.FragmentGroup, 0, items.Length())
	items.Each(func(i int, item *goquery.Selection) {
		group := entities.FragmentGroup{
			TransitMinutes: extractTransitMinutes(item),
		}

		item.Find(".predictionTime").Each(func(j int, pt *goquery.Selection) {
			text := cleanText(pt.Text())
			switch {
			case strings.Contains(text, scheduledMarker):
				group.Fragments = append(group.Fragments, entities.Fragment{
					Kind:          entities.KindScheduled,
					Text:          text,
					CompanionText: companionText(pt.Parent()),
				})
			case strings.Contains(text, arrivalMarker):
				group.Fragments = append(group.Fragments, entities.Fragment{
					Kind: entities.KindArrivalEstimate,
					Text: text,
				})
			}
		})

		groups = append(groups, group)
	})

	return groups, nil
}

// ExtractDisruptionNotice yields the line's notice; a suspension notice outranks any other trouble notice
func ExtractDisruptionNotice(doc *goquery.Document) (entities.Fragment, error) {
	notice := doc.Find("dd.trouble.suspend").First()
	if notice.Length() == 0 {
		notice = doc.Find("dd.trouble").First()
	}
	if notice.Length() == 0 {
		return entities.Fragment{}, ErrNoFragments
	}

	return entities.Fragment{
		Kind: entities.KindDisruptionNotice,
		Text: noticeText(notice),
	}, nil
}

// noticeText joins the notice's text nodes with the line breaks and indentation of the markup removed
func noticeText(notice *goquery.Selection) string {
	var b strings.Builder
	for _, s := range strippedStrings(notice) {
		for _, line := range strings.Split(s, "\n") {
			b.WriteString(strings.TrimSpace(line))
		}
	}
	return b.String()
}

// companionText finds the "N分後に到着" annotation among the marker's sibling strings
func companionText(parent *goquery.Selection) string {
	if parent.Length() == 0 {
		return ""
	}
	for _, s := range strippedStrings(parent) {
		if strings.Contains(s, companionMarker) {
			return s
		}
	}
	return ""
}

func extractTransitMinutes(item *goquery.Selection) string {
	var minutes string
	item.Find(".dnvPane").First().Find("div").EachWithBreak(func(i int, div *goquery.Selection) bool {
		text := strings.TrimSpace(div.Text())
		if !strings.Contains(text, transitTimeMarker) {
			return true
		}
		if m := transitMinutesRe.FindStringSubmatch(text); len(m) == 2 {
			minutes = m[1]
		}
		return false
	})
	return minutes
}

// strippedStrings returns every non-blank text node under the selection, trimmed, in document order
func strippedStrings(sel *goquery.Selection) []string {
	var out []string
	collectText(sel, &out)
	return out
}

func collectText(sel *goquery.Selection, out *[]string) {
	sel.Contents().Each(func(i int, child *goquery.Selection) {
		if goquery.NodeName(child) == "#text" {
			if s := strings.TrimSpace(child.Text()); s != "" {
				*out = append(*out, s)
			}
			return
		}
		collectText(child, out)
	})
}

func cleanText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\n", "")
	return strings.ReplaceAll(text, "\t", "")
}
