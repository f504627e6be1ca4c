package remote

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/content-lifecycle-console/internal/models"
)

var errNoKnownShape = errors.New("response body matched no known envelope shape")

// Envelope is a decoded remote response. The backend is inconsistent about
// where it puts data and success flags, so the accessors below probe every
// shape it is known to use.
type Envelope struct {
	Status int
	Body   interface{} // decoded JSON, nil when the body was empty or not JSON
	Text   string      // raw body when it was not JSON
}

func decodeEnvelope(status int, raw []byte) *Envelope {
	env := &Envelope{Status: status}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return env
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var body interface{}
	if err := dec.Decode(&body); err != nil {
		env.Text = string(trimmed)
		return env
	}
	env.Body = body
	return env
}

// Succeeded reports whether any recognised success signal is present:
// HTTP 200/201/204, success: true at the top level or under data, or a
// message containing "success" at the top level or under data.
func (e *Envelope) Succeeded() bool {
	switch e.Status {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return true
	}

	if b, ok := lookup(e.Body, "success").(bool); ok && b {
		return true
	}
	if b, ok := lookup(e.Body, "data", "success").(bool); ok && b {
		return true
	}

	messages := []string{
		stringAt(e.Body, "message"),
		stringAt(e.Body, "data", "message"),
		e.Text,
	}
	for _, msg := range messages {
		if strings.Contains(strings.ToLower(msg), "success") {
			return true
		}
	}
	return false
}

// ServerMessage returns the most specific human-readable message in the body
func (e *Envelope) ServerMessage() string {
	candidates := []string{
		stringAt(e.Body, "message"),
		stringAt(e.Body, "detail"),
		stringAt(e.Body, "error"),
		stringAt(e.Body, "data", "message"),
		stringAt(e.Body, "error", "message"),
	}
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	if errs, ok := lookup(e.Body, "errors").([]interface{}); ok && len(errs) > 0 {
		if s, ok := errs[0].(string); ok {
			return s
		}
	}
	if len(e.Text) > 0 && len(e.Text) <= 200 {
		return e.Text
	}
	return ""
}

// Item locates a single content object in the body
func (e *Envelope) Item(kind models.ContentKind) (*models.ContentItem, error) {
	candidates := []interface{}{
		lookup(e.Body, "data", string(kind)),
		lookup(e.Body, "data"),
		lookup(e.Body, string(kind)),
		e.Body,
	}
	for _, c := range candidates {
		obj, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		if _, hasID := obj["id"]; !hasID {
			continue
		}
		return decodeContent(kind, obj)
	}
	return nil, errNoKnownShape
}

// List locates a page of content objects in the body
func (e *Envelope) List(kind models.ContentKind) ([]*models.ContentItem, *models.Pagination, error) {
	plural := kind.Plural()
	candidates := []interface{}{
		lookup(e.Body, "data", plural),
		lookup(e.Body, plural),
		lookup(e.Body, "data"),
		lookup(e.Body, "results"),
		lookup(e.Body, "data", "results"),
		e.Body,
	}

	var raw []interface{}
	found := false
	for _, c := range candidates {
		if arr, ok := c.([]interface{}); ok {
			raw = arr
			found = true
			break
		}
	}
	if !found {
		return nil, nil, errNoKnownShape
	}

	items := make([]*models.ContentItem, 0, len(raw))
	for _, r := range raw {
		obj, ok := r.(map[string]interface{})
		if !ok {
			return nil, nil, errNoKnownShape
		}
		item, err := decodeContent(kind, obj)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, item)
	}

	return items, e.pagination(), nil
}

func (e *Envelope) pagination() *models.Pagination {
	for _, c := range []interface{}{lookup(e.Body, "pagination"), lookup(e.Body, "data", "pagination")} {
		obj, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		p := &models.Pagination{
			Page:       intAt(obj, "page", "current_page"),
			PageSize:   intAt(obj, "page_size", "per_page"),
			Total:      intAt(obj, "total", "count"),
			TotalPages: intAt(obj, "total_pages", "pages"),
		}
		if next, ok := obj["next"].(string); ok {
			p.Next = next
		}
		return p
	}

	// Paginated list responses: {"count": N, "next": "...", "results": [...]}
	if _, ok := lookup(e.Body, "results").([]interface{}); ok {
		p := &models.Pagination{}
		if obj, ok := e.Body.(map[string]interface{}); ok {
			p.Total = intAt(obj, "count")
			if next, ok := obj["next"].(string); ok {
				p.Next = next
			}
		}
		return p
	}
	return nil
}

// boolAt returns the first boolean found at any of the paths
func (e *Envelope) boolAt(paths ...[]string) (bool, bool) {
	for _, p := range paths {
		if b, ok := lookup(e.Body, p...).(bool); ok {
			return b, true
		}
	}
	return false, false
}

// intAtPaths returns the first integer found at any of the paths
func (e *Envelope) intAtPaths(paths ...[]string) (int, bool) {
	for _, p := range paths {
		if n, ok := toInt(lookup(e.Body, p...)); ok {
			return n, true
		}
	}
	return 0, false
}

func lookup(v interface{}, path ...string) interface{} {
	cur := v
	for _, key := range path {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur, ok = obj[key]
		if !ok {
			return nil
		}
	}
	return cur
}

func stringAt(v interface{}, path ...string) string {
	s, _ := lookup(v, path...).(string)
	return s
}

func intAt(obj map[string]interface{}, keys ...string) int {
	for _, k := range keys {
		if n, ok := toInt(obj[k]); ok {
			return n
		}
	}
	return 0
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return 0, false
			}
			return int(f), true
		}
		return int(i), true
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}
