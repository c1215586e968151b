package content

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// IsEmpty reports whether an item's content carries no real content and must
// not be persisted. The editor session and the reconciliation service both
// call this; the server never trusts client-side filtering alone.
func IsEmpty(typ Type, payload string) bool {
	switch typ {
	case TypeText:
		return isEmptyText(payload)
	case TypeImage:
		return isEmptyImage(payload)
	default:
		return true
	}
}

// isEmptyText reports whether an HTML fragment renders no visible text.
// Browsers leave degenerate shapes behind when the user deletes everything in
// a contenteditable region (a bare <br>, an empty paragraph, a wrapper holding
// only a line break); all of them strip to nothing.
func isEmptyText(fragment string) bool {
	if strings.TrimSpace(fragment) == "" {
		return true
	}
	return strings.TrimSpace(stripTags(fragment)) == ""
}

// isEmptyImage reports whether an image payload lacks a durable reference.
// A data: URI is a client-local preview that has not been uploaded yet and
// must not reach storage.
func isEmptyImage(payload string) bool {
	img := DecodeImage(payload)
	src := strings.TrimSpace(img.Src)
	if src == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(src), "data:")
}

// stripTags concatenates the text nodes of an HTML fragment, discarding all
// markup. The fragment is parsed in a body context so partial markup is
// handled the way a browser would handle it.
func stripTags(fragment string) string {
	body := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		// Unparseable input cannot render text.
		return ""
	}

	var sb strings.Builder
	for _, n := range nodes {
		collectText(n, &sb)
	}
	return sb.String()
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}
