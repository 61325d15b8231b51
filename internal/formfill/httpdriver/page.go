package httpdriver

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pageGroup is a radio or checkbox field found on a form page.
type pageGroup struct {
	name    string
	options []string
}

// pageFields lists the entry fields of a form page in page order, split by
// the kind of control that renders them.
type pageFields struct {
	texts  []string
	radios []pageGroup
	boxes  []pageGroup
}

func (p *pageFields) empty() bool {
	return len(p.texts) == 0 && len(p.radios) == 0 && len(p.boxes) == 0
}

// scanPage collects the entry fields of a form. Plain HTML controls are read
// from their type and value; hosted forms render choices as role=radio and
// role=checkbox elements next to a hidden entry input, so hidden inputs are
// classified by the question block around them.
func scanPage(doc *goquery.Document) *pageFields {
	p := &pageFields{}
	seen := make(map[string]bool)

	doc.Find("input[name^='entry.'], textarea[name^='entry.'], select[name^='entry.']").Each(func(_ int, s *goquery.Selection) {
		name := s.AttrOr("name", "")
		// entry.<id>_sentinel and split date parts
		if strings.Contains(strings.TrimPrefix(name, "entry."), "_") {
			return
		}

		switch goquery.NodeName(s) {
		case "textarea":
			p.addText(seen, name)
			return
		case "select":
			var options []string
			s.Find("option").Each(func(_ int, o *goquery.Selection) {
				if v := strings.TrimSpace(o.AttrOr("value", "")); v != "" {
					options = append(options, v)
				}
			})
			p.radios = addGroup(p.radios, seen, name, options...)
			return
		}

		switch strings.ToLower(s.AttrOr("type", "text")) {
		case "radio":
			p.radios = addOption(p.radios, seen, name, s.AttrOr("value", ""))
		case "checkbox":
			p.boxes = addOption(p.boxes, seen, name, s.AttrOr("value", ""))
		case "hidden":
			p.addHidden(seen, name, s)
		case "submit", "button", "reset", "image", "file":
		default:
			p.addText(seen, name)
		}
	})
	return p
}

func (p *pageFields) addText(seen map[string]bool, name string) {
	if seen[name] {
		return
	}
	seen[name] = true
	p.texts = append(p.texts, name)
}

func (p *pageFields) addHidden(seen map[string]bool, name string, s *goquery.Selection) {
	block := s.Closest("[role='listitem']")
	if block.Length() == 0 {
		return
	}
	if radios := block.Find("[role='radio']"); radios.Length() > 0 {
		p.radios = addGroup(p.radios, seen, name, choiceLabels(radios, "data-value")...)
		return
	}
	if boxes := block.Find("[role='checkbox']"); boxes.Length() > 0 {
		p.boxes = addGroup(p.boxes, seen, name, choiceLabels(boxes, "data-answer-value")...)
		return
	}
	p.addText(seen, name)
}

func choiceLabels(s *goquery.Selection, attr string) []string {
	var labels []string
	s.Each(func(_ int, c *goquery.Selection) {
		label := strings.TrimSpace(c.AttrOr(attr, ""))
		if label == "" {
			label = strings.TrimSpace(c.AttrOr("aria-label", ""))
		}
		if label == "" {
			label = strings.TrimSpace(c.Find("span").First().Text())
		}
		if label != "" {
			labels = append(labels, label)
		}
	})
	return labels
}

func addGroup(groups []pageGroup, seen map[string]bool, name string, options ...string) []pageGroup {
	if seen[name] {
		return groups
	}
	seen[name] = true
	return append(groups, pageGroup{name: name, options: options})
}

func addOption(groups []pageGroup, seen map[string]bool, name, value string) []pageGroup {
	if !seen[name] {
		groups = addGroup(groups, seen, name)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return groups
	}
	for i := range groups {
		if groups[i].name == name {
			groups[i].options = append(groups[i].options, value)
			break
		}
	}
	return groups
}
