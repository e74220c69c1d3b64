package transfer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"
	"time"

	nethtml "golang.org/x/net/html"

	"github.com/MrSnakeDoc/auramark/internal/domain"
)

// ReadNetscape parses Netscape bookmark HTML (the browser export format)
// into an upsert batch. <H3> headings become folders nested through their
// <DL> lists, <A> links become link bookmarks carrying ADD_DATE and TAGS.
// IDs derive from the folder path and URL, so importing the same file twice
// updates records in place.
func ReadNetscape(r io.Reader) (*domain.Batch, Summary, error) {
	doc, err := nethtml.Parse(io.LimitReader(r, MaxImportBytes))
	if err != nil {
		return nil, Summary{}, domain.Validationf("invalid bookmark html: %v", err)
	}

	var (
		b       domain.Batch
		folders []domain.Write
		sum     Summary
		// stack of folder ids and names, empty = root
		stack   []netscapeFolder
		pending *netscapeFolder // folder waiting to be pushed on next DL
	)

	var parse func(*nethtml.Node)
	parse = func(n *nethtml.Node) {
		if n.Type == nethtml.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				name := textContent(n)
				if name == "" {
					return
				}
				path := folderPath(stack, name)
				f := netscapeFolder{id: stableID("folder", path), path: path}

				name = strings.TrimSpace(name)
				p := domain.FolderPatch{Name: &name, SetParent: true}
				if len(stack) > 0 {
					parent := stack[len(stack)-1].id
					p.ParentID = &parent
				}
				if created, ok := unixAttr(n, "add_date"); ok {
					p.CreatedAt = &created
				}
				folders = append(folders, domain.Write{
					Kind:       domain.WriteUpsert,
					Collection: domain.CollectionFolders,
					ID:         f.id,
					Folder:     &p,
				})
				sum.Folders++
				pending = &f
				return

			case "a":
				href := strings.TrimSpace(attr(n, "href"))
				if href == "" {
					return
				}
				title := textContent(n)
				if title == "" {
					title = href
				}

				typ := domain.TypeLink
				no := false
				p := domain.BookmarkPatch{
					Type:      &typ,
					Title:     &title,
					URL:       &href,
					IsTrashed: &no,
					SetFolder: true,
				}
				var folderPath string
				if len(stack) > 0 {
					top := stack[len(stack)-1]
					p.FolderID = &top.id
					folderPath = top.path
				}
				if created, ok := unixAttr(n, "add_date"); ok {
					p.CreatedAt = &created
				}
				if tags := domain.NormalizeTags(strings.Split(attr(n, "tags"), ",")); len(tags) > 0 {
					p.AddTags = tags
				}
				b.UpsertBookmark(stableID("bookmark", folderPath, href), p)
				sum.Bookmarks++
				return

			case "dl":
				pushed := false
				if pending != nil {
					stack = append(stack, *pending)
					pending = nil
					pushed = true
				}
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}
				if pushed {
					stack = stack[:len(stack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}
	parse(doc)

	if sum.Folders+sum.Bookmarks == 0 {
		return nil, sum, domain.Validationf("no bookmarks found in html")
	}
	b.Writes = append(folders, b.Writes...)
	return &b, sum, nil
}

type netscapeFolder struct {
	id   string
	path string
}

func folderPath(stack []netscapeFolder, name string) string {
	if len(stack) == 0 {
		return name
	}
	return stack[len(stack)-1].path + "/" + name
}

func stableID(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "ns-" + hex.EncodeToString(hash[:])[:32]
}

// textContent returns the trimmed text content of a node.
func textContent(n *nethtml.Node) string {
	var text strings.Builder
	var extract func(*nethtml.Node)
	extract = func(n *nethtml.Node) {
		if n.Type == nethtml.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(text.String()), " ")
}

// attr returns the value of an attribute, case-insensitive.
func attr(n *nethtml.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func unixAttr(n *nethtml.Node, key string) (time.Time, bool) {
	v := attr(n, key)
	if v == "" {
		return time.Time{}, false
	}
	ts, err := strconv.ParseInt(v, 10, 64)
	if err != nil || ts <= 0 {
		return time.Time{}, false
	}
	return time.Unix(ts, 0).UTC(), true
}

// WriteNetscape writes the non-trashed bookmarks of snap as Netscape
// bookmark HTML, folders first at every level. Text bookmarks have no
// URL and are skipped.
func WriteNetscape(w io.Writer, snap *domain.Snapshot) error {
	tree := domain.NewFolderTree(snap.Folders)
	byFolder := make(map[string][]*domain.Bookmark)
	for i := range snap.Bookmarks {
		bk := &snap.Bookmarks[i]
		if bk.IsTrashed || bk.Type != domain.TypeLink {
			continue
		}
		parent := domain.Deref(bk.FolderID)
		if _, ok := tree.Get(parent); !ok {
			parent = ""
		}
		byFolder[parent] = append(byFolder[parent], bk)
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	sb.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	sb.WriteString("<TITLE>Bookmarks</TITLE>\n")
	sb.WriteString("<H1>Bookmarks</H1>\n")
	sb.WriteString("<DL><p>\n")
	writeNetscapeLevel(&sb, tree, byFolder, "", 1)
	sb.WriteString("</DL><p>\n")

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("failed to write bookmark html: %w", err)
	}
	return nil
}

func writeNetscapeLevel(sb *strings.Builder, tree *domain.FolderTree, byFolder map[string][]*domain.Bookmark, parent string, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, id := range tree.Children(parent) {
		f, _ := tree.Get(id)
		fmt.Fprintf(sb, "%s<DT><H3 ADD_DATE=\"%d\">%s</H3>\n", prefix, unixOrZero(f.CreatedAt), html.EscapeString(f.Name))
		fmt.Fprintf(sb, "%s<DL><p>\n", prefix)
		writeNetscapeLevel(sb, tree, byFolder, id, indent+1)
		fmt.Fprintf(sb, "%s</DL><p>\n", prefix)
	}

	for _, bk := range byFolder[parent] {
		tags := ""
		if len(bk.Tags) > 0 {
			tags = fmt.Sprintf(" TAGS=\"%s\"", html.EscapeString(strings.Join(bk.Tags, ",")))
		}
		fmt.Fprintf(sb, "%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\"%s>%s</A>\n",
			prefix,
			html.EscapeString(bk.URL),
			unixOrZero(bk.CreatedAt),
			tags,
			html.EscapeString(bk.Title),
		)
	}
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
