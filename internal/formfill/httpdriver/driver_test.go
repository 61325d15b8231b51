package httpdriver

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/SAP-F-2025/survey-assistant/internal/formfill"
	"github.com/SAP-F-2025/survey-assistant/internal/models"
	"github.com/SAP-F-2025/survey-assistant/internal/survey"
	"github.com/SAP-F-2025/survey-assistant/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const confirmationPage = `<html><head><title>Party RSVP</title></head>
<body><div role="heading">Party RSVP</div><div>Your response has been recorded.</div></body></html>`

const formPage = `<html><head><title>Party RSVP - Google Forms</title>
<meta property="og:title" content="Party RSVP"></head>
<body><form><input name="entry.111" type="text"></form></body></html>`

func partyQuestions() models.QuestionSet {
	return models.QuestionSet{
		{Text: "Name?", Type: models.ShortAnswer, EntryID: "111"},
		{Text: "Coming?", Type: models.MultipleChoice, Options: []string{"Yes", "No"}, EntryID: "222"},
		{Text: "Dishes?", Type: models.Checkboxes, Options: []string{"Mains", "Salad", "Dessert"}, EntryID: "333"},
		{Text: "Notes?", Type: models.Paragraph},
	}
}

func TestResponseURL(t *testing.T) {
	testCases := map[string]string{
		"https://docs.google.com/forms/d/e/abc/viewform?usp=sf_link": "https://docs.google.com/forms/d/e/abc/formResponse",
		"https://docs.google.com/forms/d/e/abc/viewform/":            "https://docs.google.com/forms/d/e/abc/formResponse",
		"https://docs.google.com/forms/d/e/abc/formResponse":         "https://docs.google.com/forms/d/e/abc/formResponse",
		"https://docs.google.com/forms/d/e/abc":                      "https://docs.google.com/forms/d/e/abc/formResponse",
	}
	for in, want := range testCases {
		got, err := ResponseURL(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}

func TestDriver_SubmitThroughSubmitter(t *testing.T) {
	var posted url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/forms/d/e/abc/formResponse" {
			http.NotFound(w, r)
			return
		}
		assert.NoError(t, r.ParseForm())
		posted = r.PostForm
		_, _ = io.WriteString(w, confirmationPage)
	}))
	defer server.Close()

	qs := partyQuestions()
	store := survey.NewResponseStore(qs)
	require.NoError(t, store.Set(0, models.Scalar("Ann")))
	require.NoError(t, store.Set(1, models.Scalar("Yes")))
	require.NoError(t, store.Set(2, models.MultiValue("Mains", "Dessert")))
	require.NoError(t, store.Set(3, models.Scalar("see you")))

	driver := New(NewClient(5*time.Second), server.URL+"/forms/d/e/abc/viewform", qs)
	submitter := formfill.NewSubmitter(utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), 5*time.Second)
	res := submitter.Submit(context.Background(), driver, qs, store)

	require.True(t, res.Success, "submission failed: %v", res.Err)
	assert.Equal(t, "Ann", posted.Get("entry.111"))
	assert.Equal(t, "Yes", posted.Get("entry.222"))
	assert.Equal(t, []string{"Mains", "Dessert"}, posted["entry.333"])

	// the paragraph has no entry id
	require.Len(t, res.FieldErrors, 1)
	assert.Equal(t, 3, res.FieldErrors[0].Index)
	assert.ErrorIs(t, res.FieldErrors[0], formfill.ErrFieldNotFound)
}

func TestDriver_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, formPage)
	}))
	defer server.Close()

	driver := New(NewClient(time.Second), server.URL+"/viewform", partyQuestions())
	require.NoError(t, driver.Submit(context.Background()))
	err := driver.WaitForConfirmation(context.Background(), time.Second)
	assert.ErrorIs(t, err, ErrRejected)

	assert.ErrorIs(t, driver.Submit(context.Background()), ErrAlreadySubmitted)
}

func TestDriver_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	driver := New(NewClient(5*time.Second), server.URL+"/viewform", partyQuestions())
	err := driver.WaitForConfirmation(context.Background(), time.Millisecond)
	assert.ErrorIs(t, err, ErrNotSubmitted)

	require.NoError(t, driver.Submit(context.Background()))
	err = driver.WaitForConfirmation(context.Background(), 50*time.Millisecond)
	assert.ErrorIs(t, err, formfill.ErrSubmissionTimeout)
}

func TestDriver_ChoiceSelection(t *testing.T) {
	// the page cannot be fetched, so the controls come from the entry ids
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	driver := New(NewClient(time.Second), server.URL+"/viewform", partyQuestions())
	ctx := context.Background()

	radios, err := driver.ChoiceGroups(ctx, false)
	require.NoError(t, err)
	require.Len(t, radios, 1)
	opts := radios[0].Options()
	require.NoError(t, opts[0].Select(ctx))
	require.NoError(t, opts[1].Select(ctx))
	assert.Equal(t, []string{"No"}, driver.Values()["entry.222"])

	boxes, err := driver.ChoiceGroups(ctx, true)
	require.NoError(t, err)
	require.Len(t, boxes, 1)
	for _, o := range boxes[0].Options()[:2] {
		require.NoError(t, o.Select(ctx))
		require.NoError(t, o.Select(ctx))
	}
	assert.Equal(t, []string{"Mains", "Salad"}, driver.Values()["entry.333"])

	texts, err := driver.TextControls(ctx)
	require.NoError(t, err)
	require.Len(t, texts, 2)
	require.NoError(t, texts[0].SetText(ctx, "Ann"))
	require.NoError(t, texts[0].Clear(ctx))
	assert.Empty(t, driver.Values().Get("entry.111"))
}

func TestFetchTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/og":
			_, _ = io.WriteString(w, formPage)
		default:
			_, _ = io.WriteString(w, confirmationPage)
		}
	}))
	defer server.Close()

	client := NewClient(time.Second)
	title, err := FetchTitle(context.Background(), client, server.URL+"/og")
	require.NoError(t, err)
	assert.Equal(t, "Party RSVP", title)

	title, err = FetchTitle(context.Background(), client, server.URL+"/plain")
	require.NoError(t, err)
	assert.Equal(t, "Party RSVP", title)
}

const liveFormPage = `<html><body><form>
<input type="text" name="entry.111">
<input type="radio" name="entry.222" value="Red"><input type="radio" name="entry.222" value="Blue">
<input type="hidden" name="entry.222_sentinel">
<input type="submit" name="entry.999">
</form></body></html>`

func TestDriver_FillsFieldsFoundOnPage(t *testing.T) {
	var gets atomic.Int32
	var posted url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/viewform":
			gets.Add(1)
			_, _ = io.WriteString(w, liveFormPage)
		case r.Method == http.MethodPost && r.URL.Path == "/formResponse":
			assert.NoError(t, r.ParseForm())
			posted = r.PostForm
			_, _ = io.WriteString(w, confirmationPage)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	qs := models.QuestionSet{
		{Text: "Name?", Type: models.ShortAnswer},
		{Text: "Color?", Type: models.MultipleChoice, Options: []string{"Red", "Blue"}},
	}
	store := survey.NewResponseStore(qs)
	require.NoError(t, store.Set(0, models.Scalar("Ann")))
	require.NoError(t, store.Set(1, models.Scalar("Blue")))

	driver := New(NewClient(5*time.Second), server.URL+"/viewform", qs)
	submitter := formfill.NewSubmitter(utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), 5*time.Second)
	res := submitter.Submit(context.Background(), driver, qs, store)

	require.True(t, res.Success, "submission failed: %v", res.Err)
	assert.Empty(t, res.FieldErrors)
	assert.Equal(t, []int{0, 1}, res.Filled)
	assert.EqualValues(t, 1, gets.Load())
	assert.Equal(t, "Ann", posted.Get("entry.111"))
	assert.Equal(t, "Blue", posted.Get("entry.222"))
	assert.NotContains(t, posted, "entry.999")
}

func TestDriver_NothingToFill(t *testing.T) {
	var posts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posts.Add(1)
		}
		_, _ = io.WriteString(w, confirmationPage)
	}))
	defer server.Close()

	qs := models.QuestionSet{{Text: "Name?", Type: models.ShortAnswer}}
	store := survey.NewResponseStore(qs)
	require.NoError(t, store.Set(0, models.Scalar("Ann")))

	driver := New(NewClient(time.Second), server.URL+"/viewform", qs)
	submitter := formfill.NewSubmitter(utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), time.Second)
	res := submitter.Submit(context.Background(), driver, qs, store)

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, formfill.ErrNothingFilled)
	require.Len(t, res.FieldErrors, 1)
	assert.ErrorIs(t, res.FieldErrors[0], formfill.ErrFieldNotFound)
	assert.Zero(t, posts.Load())
}

func TestScanPage_HostedLayout(t *testing.T) {
	const page = `<div role="list">
<div role="listitem"><input type="text" aria-label="Name"><input type="hidden" name="entry.111"></div>
<div role="listitem"><div role="radiogroup">
  <div role="radio" data-value="Yes"><span>Yes</span></div>
  <div role="radio"><span>No</span></div>
</div><input type="hidden" name="entry.222_sentinel"><input type="hidden" name="entry.222"></div>
<div role="listitem"><div role="group">
  <div role="checkbox" data-answer-value="Mains"></div>
  <div role="checkbox" aria-label="Dessert"></div>
</div><input type="hidden" name="entry.333"><input type="hidden" name="entry.333"></div>
<div role="listitem"><textarea name="entry.444"></textarea></div>
</div>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	fields := scanPage(doc)
	assert.Equal(t, []string{"entry.111", "entry.444"}, fields.texts)
	assert.Equal(t, []pageGroup{{name: "entry.222", options: []string{"Yes", "No"}}}, fields.radios)
	assert.Equal(t, []pageGroup{{name: "entry.333", options: []string{"Mains", "Dessert"}}}, fields.boxes)
}

func TestDriver_UnlabelledGroupUsesQuestionOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<div role="listitem"><div role="checkbox"></div><input type="hidden" name="entry.5"></div>`)
	}))
	defer server.Close()

	qs := models.QuestionSet{{Text: "Dishes?", Type: models.Checkboxes, Options: []string{"Mains", "Dessert"}}}
	driver := New(NewClient(time.Second), server.URL+"/viewform", qs)
	ctx := context.Background()

	groups, err := driver.ChoiceGroups(ctx, true)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	opts := groups[0].Options()
	require.Len(t, opts, 2)
	require.NoError(t, opts[1].Select(ctx))
	assert.Equal(t, []string{"Dessert"}, driver.Values()["entry.5"])
}
