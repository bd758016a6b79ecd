package wikipedia

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// disambiguationOptions fetches the rendered disambiguation page and returns
// the text of the first link in every list item outside the table of contents.
func (c *Client) disambiguationOptions(ctx context.Context, pageID int64) ([]string, error) {
	params := url.Values{}
	params.Set("pageid", strconv.FormatInt(pageID, 10))
	params.Set("prop", "text")

	var resp parseResponse
	if err := c.query(ctx, "parse", params, &resp); err != nil {
		return nil, err
	}

	options, err := parseDisambiguationOptions(resp.Parse.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse disambiguation page: %w", err)
	}
	return options, nil
}

func parseDisambiguationOptions(body string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	options := make([]string, 0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Li && !strings.Contains(attr(n, "class"), "tocsection") {
			if a := firstElement(n, atom.A); a != nil {
				if text := strings.TrimSpace(textContent(a)); text != "" {
					options = append(options, text)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return options, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// firstElement returns the first descendant of n with the given tag, depth first
func firstElement(n *html.Node, tag atom.Atom) *html.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.DataAtom == tag {
			return child
		}
		if found := firstElement(child, tag); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			collect(child)
		}
	}
	collect(n)
	return sb.String()
}
