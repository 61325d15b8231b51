// Package httpdriver fills hosted forms by posting their entry fields
// directly, without a browser.
package httpdriver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/SAP-F-2025/survey-assistant/internal/formfill"
	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/go-resty/resty/v2"
)

var (
	ErrAlreadySubmitted = errors.New("form already submitted")
	ErrNotSubmitted     = errors.New("form not submitted yet")
	ErrRejected         = errors.New("form rejected the submission")
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

func NewClient(timeout time.Duration) *resty.Client {
	client := resty.New()
	client.SetHeader("user-agent", userAgent)
	client.SetTimeout(timeout)
	return client
}

// ResponseURL maps a form's view URL to the URL its answers are posted to.
func ResponseURL(formURL string) (string, error) {
	u, err := url.Parse(formURL)
	if err != nil {
		return "", err
	}
	u.RawQuery = ""
	u.Fragment = ""
	path := strings.TrimSuffix(u.Path, "/")
	switch {
	case strings.HasSuffix(path, "/viewform"):
		path = strings.TrimSuffix(path, "/viewform") + "/formResponse"
	case strings.HasSuffix(path, "/formResponse"):
	default:
		path += "/formResponse"
	}
	u.Path = path
	return u.String(), nil
}

type outcome struct {
	res *resty.Response
	err error
}

// Driver is a formfill.Driver for one submission of one form. Controls are
// read from the live form page, in page order. When the page lists no
// fields of a kind, questions carrying an EntryID map to "entry.<EntryID>"
// instead.
type Driver struct {
	client    *resty.Client
	formURL   string
	questions models.QuestionSet

	pageMu  sync.Mutex
	page    *pageFields
	pageErr error
	loaded  bool

	mu     sync.Mutex
	values url.Values
	done   chan outcome
}

func New(client *resty.Client, formURL string, questions models.QuestionSet) *Driver {
	return &Driver{
		client:    client,
		formURL:   formURL,
		questions: questions,
		values:    url.Values{},
	}
}

// Values returns a copy of the fields entered so far.
func (d *Driver) Values() url.Values {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := url.Values{}
	for k, v := range d.values {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// fields fetches and scans the form page once per driver.
func (d *Driver) fields(ctx context.Context) (*pageFields, error) {
	d.pageMu.Lock()
	defer d.pageMu.Unlock()
	if !d.loaded {
		d.page, d.pageErr = d.fetchFields(ctx)
		d.loaded = true
	}
	return d.page, d.pageErr
}

func (d *Driver) fetchFields(ctx context.Context) (*pageFields, error) {
	res, err := d.client.R().SetContext(ctx).Get(d.formURL)
	if err != nil {
		return nil, fmt.Errorf("fetch form %s: %w", d.formURL, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("fetch form %s: %s", d.formURL, res.Status())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse form %s: %w", d.formURL, err)
	}
	return scanPage(doc), nil
}

// questionsOf returns the questions that match keep, in order.
func (d *Driver) questionsOf(keep func(models.Question) bool) models.QuestionSet {
	var out models.QuestionSet
	for _, q := range d.questions {
		if keep(q) {
			out = append(out, q)
		}
	}
	return out
}

func hasEntryIDs(qs models.QuestionSet) bool {
	for _, q := range qs {
		if q.EntryID != "" {
			return true
		}
	}
	return false
}

func entryKey(id string) string {
	if id == "" {
		return ""
	}
	return "entry." + id
}

func (d *Driver) TextControls(ctx context.Context) ([]formfill.TextControl, error) {
	qs := d.questionsOf(func(q models.Question) bool { return q.Type.Category() == models.CategoryText })
	page, err := d.fields(ctx)
	if err == nil && len(page.texts) > 0 {
		out := make([]formfill.TextControl, len(page.texts))
		for i, name := range page.texts {
			out[i] = &textControl{d: d, key: name, question: name}
		}
		return out, nil
	}
	if !hasEntryIDs(qs) {
		return nil, err
	}

	out := make([]formfill.TextControl, len(qs))
	for i, q := range qs {
		out[i] = &textControl{d: d, key: entryKey(q.EntryID), question: q.Text}
	}
	return out, nil
}

func (d *Driver) ChoiceGroups(ctx context.Context, multi bool) ([]formfill.ChoiceGroup, error) {
	want := models.MultipleChoice
	if multi {
		want = models.Checkboxes
	}
	qs := d.questionsOf(func(q models.Question) bool { return q.Type == want })

	page, err := d.fields(ctx)
	if err == nil {
		found := page.radios
		if multi {
			found = page.boxes
		}
		if len(found) > 0 {
			out := make([]formfill.ChoiceGroup, len(found))
			for i, g := range found {
				options := g.options
				// unlabelled choices take the labels of the matching question
				if len(options) == 0 && i < len(qs) {
					options = qs[i].Options
				}
				out[i] = &choiceGroup{d: d, key: g.name, question: g.name, options: options, multi: multi}
			}
			return out, nil
		}
	}
	if !hasEntryIDs(qs) {
		return nil, err
	}

	out := make([]formfill.ChoiceGroup, len(qs))
	for i, q := range qs {
		out[i] = &choiceGroup{d: d, key: entryKey(q.EntryID), question: q.Text, options: q.Options, multi: multi}
	}
	return out, nil
}

// Submit posts the entered fields. It returns once the request is under way;
// WaitForConfirmation reports the result.
func (d *Driver) Submit(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done != nil {
		return ErrAlreadySubmitted
	}
	target, err := ResponseURL(d.formURL)
	if err != nil {
		return fmt.Errorf("invalid form url %q: %w", d.formURL, err)
	}

	values := url.Values{}
	for k, v := range d.values {
		values[k] = append([]string(nil), v...)
	}
	done := make(chan outcome, 1)
	d.done = done

	go func() {
		res, err := d.client.R().
			SetContext(ctx).
			SetFormDataFromValues(values).
			Post(target)
		done <- outcome{res: res, err: err}
	}()
	return nil
}

func (d *Driver) WaitForConfirmation(ctx context.Context, timeout time.Duration) error {
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()
	if done == nil {
		return ErrNotSubmitted
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) {
				return fmt.Errorf("%w: %w", formfill.ErrSubmissionTimeout, out.err)
			}
			return out.err
		}
		return confirm(out.res)
	case <-timer.C:
		return formfill.ErrSubmissionTimeout
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", formfill.ErrSubmissionTimeout, ctx.Err())
	}
}

// confirm accepts a response that landed on the formResponse page without
// redisplaying the form's entry fields.
func confirm(res *resty.Response) error {
	if res.IsError() {
		return fmt.Errorf("%w: status %s", ErrRejected, res.Status())
	}
	if req := res.RawResponse.Request; req != nil && !strings.Contains(req.URL.Path, "formResponse") {
		return fmt.Errorf("%w: landed on %s", ErrRejected, req.URL.Path)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return fmt.Errorf("%w: unreadable confirmation page: %w", ErrRejected, err)
	}
	if doc.Find("input[name^='entry.']").Length() > 0 {
		return fmt.Errorf("%w: form was sent back for correction", ErrRejected)
	}
	return nil
}

// FetchTitle returns the title of a form's page.
func FetchTitle(ctx context.Context, client *resty.Client, formURL string) (string, error) {
	res, err := client.R().SetContext(ctx).Get(formURL)
	if err != nil {
		return "", err
	}
	if res.IsError() {
		return "", fmt.Errorf("fetch %s: %s", formURL, res.Status())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return "", err
	}
	if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title), nil
	}
	return strings.TrimSpace(doc.Find("title").First().Text()), nil
}

type textControl struct {
	d        *Driver
	key      string
	question string
}

func (c *textControl) field() (string, error) {
	if c.key == "" {
		return "", fmt.Errorf("%w: no entry id for %q", formfill.ErrFieldNotFound, c.question)
	}
	return c.key, nil
}

func (c *textControl) Clear(context.Context) error {
	key, err := c.field()
	if err != nil {
		return err
	}
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	c.d.values.Del(key)
	return nil
}

func (c *textControl) SetText(_ context.Context, value string) error {
	key, err := c.field()
	if err != nil {
		return err
	}
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	c.d.values.Set(key, value)
	return nil
}

type choiceGroup struct {
	d        *Driver
	key      string
	question string
	options  []string
	multi    bool
}

func (g *choiceGroup) Options() []formfill.ChoiceOption {
	out := make([]formfill.ChoiceOption, len(g.options))
	for i, label := range g.options {
		out[i] = &choiceOption{group: g, label: label}
	}
	return out
}

type choiceOption struct {
	group *choiceGroup
	label string
}

func (o *choiceOption) Label() string { return o.label }

func (o *choiceOption) Select(context.Context) error {
	g := o.group
	if g.key == "" {
		return fmt.Errorf("%w: no entry id for %q", formfill.ErrFieldNotFound, g.question)
	}
	key := g.key
	g.d.mu.Lock()
	defer g.d.mu.Unlock()
	if g.multi {
		for _, v := range g.d.values[key] {
			if v == o.label {
				return nil
			}
		}
		g.d.values.Add(key, o.label)
		return nil
	}
	g.d.values.Set(key, o.label)
	return nil
}
