// Package markdown renders repository documents to HTML, pointing relative
// image references at the raw content endpoint.
package markdown

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Context identifies where a document lives.
type Context struct {
	Owner  string
	Repo   string
	Branch string
	Dir    string // directory of the document, "" for the repository root
}

// RawURL returns the content endpoint for a repository-relative path.
func RawURL(ctx Context, p string) string {
	return "/api/repositories/" + url.PathEscape(ctx.Owner) + "/" + url.PathEscape(ctx.Repo) +
		"/raw?branch=" + url.QueryEscape(ctx.Branch) + "&path=" + escapePath(p)
}

// RewriteImageURL maps a relative image reference onto the raw content
// endpoint. Absolute and protocol-relative URLs are returned unchanged.
func RewriteImageURL(dest string, ctx Context) string {
	if dest == "" || isAbsolute(dest) {
		return dest
	}

	p := dest
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	if strings.HasPrefix(p, "/") {
		p = strings.TrimLeft(p, "/")
	} else if ctx.Dir != "" {
		p = path.Join(ctx.Dir, p)
	}
	p = strings.TrimPrefix(path.Clean("/"+p), "/")

	return RawURL(ctx, p)
}

func isAbsolute(dest string) bool {
	if strings.HasPrefix(dest, "//") {
		return true
	}
	u, err := url.Parse(dest)
	return err == nil && u.Scheme != ""
}

// escapePath escapes each segment but keeps the separators readable.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// Render converts Markdown to HTML. Raw HTML in the source is passed through.
func Render(src []byte, ctx Context) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(&imageRewriter{ctx: ctx}, 100)),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

type imageRewriter struct {
	ctx Context
}

func (r *imageRewriter) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if img, ok := n.(*ast.Image); ok {
			img.Destination = []byte(RewriteImageURL(string(img.Destination), r.ctx))
		}
		return ast.WalkContinue, nil
	})
}
