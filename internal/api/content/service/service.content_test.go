package contentsvc

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	aisvc "content_studio/internal/api/ai/service"
	analyticsmodels "content_studio/internal/api/analytics/models"
	analyticssvc "content_studio/internal/api/analytics/service"
	authmodels "content_studio/internal/api/auth/models"
	contentdto "content_studio/internal/api/content/dto"
	contentmodels "content_studio/internal/api/content/models"
	"content_studio/internal/common"
	"content_studio/internal/llm"
)

type fakeGenerator struct {
	mu         sync.Mutex
	text       string
	err        error
	calls      int
	lastType   string
	lastParams map[string]any
}

func (f *fakeGenerator) GenerateContent(_ context.Context, contentType string, params map[string]any, overrides llm.Parameters) (*aisvc.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastType = contentType
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return &aisvc.Result{
		Text:       f.text,
		Prompt:     "rendered: " + params["prompt"].(string),
		Model:      "gpt-test",
		Parameters: aisvc.MergeParameters(overrides),
		Usage:      llm.Usage{TotalTokens: 42},
	}, nil
}

func (f *fakeGenerator) ImproveContent(_ context.Context, body, feedback string) (*aisvc.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &aisvc.Result{Text: body + " (" + feedback + ")", Model: "gpt-test"}, nil
}

type fixedPrefs struct{}

func (fixedPrefs) Preferences(context.Context, primitive.ObjectID) (authmodels.Preferences, error) {
	return authmodels.Preferences{Tone: "casual", Language: "vi"}, nil
}

type fixture struct {
	svc       *ContentService
	store     *MemoryContentStore
	analytics *analyticssvc.AnalyticsService
	gen       *fakeGenerator
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := NewMemoryContentStore()
	analytics := analyticssvc.NewAnalyticsService(analyticssvc.NewMemoryAnalyticsStore(), store, nil, nil, time.UTC)
	gen := &fakeGenerator{text: "Generated body"}
	svc := NewContentService(Dependencies{
		Store:       store,
		Generator:   gen,
		Analytics:   analytics,
		Preferences: fixedPrefs{},
	})
	f := &fixture{svc: svc, store: store, analytics: analytics, gen: gen, now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	svc.now = func() time.Time { return f.now }
	return f
}

func principal(company primitive.ObjectID, role string) authmodels.Principal {
	return authmodels.Principal{AccountID: primitive.NewObjectID(), CompanyID: company, Role: role}
}

func (f *fixture) generate(t *testing.T, p authmodels.Principal) *contentmodels.Content {
	t.Helper()
	content, err := f.svc.Generate(context.Background(), &contentdto.GenerateInput{
		Type:   "changelog",
		Prompt: "Fix login bug",
		Tags:   []string{"release", " release ", ""},
	}, p)
	require.NoError(t, err)
	return content
}

func TestGenerateScenario(t *testing.T) {
	f := newFixture(t)
	author := principal(primitive.NewObjectID(), authmodels.RoleUser)

	content, err := f.svc.Generate(context.Background(), &contentdto.GenerateInput{
		Type:   "blog",
		Prompt: "Go generics in practice",
		Title:  "Generics",
		Params: map[string]any{"audience": "backend devs"},
	}, author)
	require.NoError(t, err)

	assert.Equal(t, contentmodels.StatusDraft, content.Status)
	assert.Equal(t, int64(1), content.Version)
	assert.Empty(t, content.Revisions)
	assert.Equal(t, author.AccountID, content.AuthorID)
	assert.Equal(t, author.CompanyID, content.CompanyID)
	assert.Equal(t, "Generated body", content.Body)
	assert.Equal(t, "Generics", content.Title)
	assert.Equal(t, "gpt-test", content.Metadata.Model)
	assert.Equal(t, 42, content.Metadata.TokenUsage.TotalTokens)

	assert.Equal(t, "blog", f.gen.lastType)
	assert.Equal(t, "Go generics in practice", f.gen.lastParams["prompt"])
	assert.Equal(t, "Generics", f.gen.lastParams["title"])
	assert.Equal(t, "backend devs", f.gen.lastParams["audience"])
	assert.Equal(t, "casual", f.gen.lastParams["tone"], "tone lấy từ preferences")

	rec, err := f.svc.Analytics(context.Background(), content.ID, author)
	require.NoError(t, err)
	assert.Equal(t, content.ID, rec.ContentID)
	assert.Empty(t, rec.Views)
	assert.Equal(t, int64(0), rec.Totals.Views)
}

func TestGenerateValidation(t *testing.T) {
	f := newFixture(t)
	p := principal(primitive.NewObjectID(), authmodels.RoleUser)

	cases := map[string]*contentdto.GenerateInput{
		"unknown type": {Type: "poem", Prompt: "x"},
		"empty prompt": {Type: "blog", Prompt: "   "},
		"long prompt":  {Type: "blog", Prompt: strings.Repeat("ư", 1001)},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Generate(context.Background(), input, p)
			assert.True(t, common.IsKind(err, common.KindValidation), "got %v", err)
		})
	}
	assert.Equal(t, 0, f.gen.calls)

	_, err := f.svc.Generate(context.Background(), &contentdto.GenerateInput{Type: "changelog", Prompt: strings.Repeat("ư", 1000)}, p)
	assert.NoError(t, err)
}

func TestGenerateTitleFromPromptAndTags(t *testing.T) {
	f := newFixture(t)
	content := f.generate(t, principal(primitive.NewObjectID(), authmodels.RoleUser))
	assert.Equal(t, "Fix login bug", content.Title)
	assert.Equal(t, "Fix login bug", f.gen.lastParams["title"], "title suy ra từ prompt phải có trước khi render")
	assert.Equal(t, []string{"release"}, content.Tags)
}

type stubCompleter struct {
	mu      sync.Mutex
	prompts []string
}

func (c *stubCompleter) Complete(_ context.Context, messages []llm.Message, _ llm.Parameters) (*llm.Completion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, messages[len(messages)-1].Content)
	return &llm.Completion{Text: "Draft body", Model: "gpt-test"}, nil
}

func (c *stubCompleter) Model() string { return "gpt-test" }

func TestGenerateWithEmbeddedTemplatesPromptOnly(t *testing.T) {
	store := NewMemoryContentStore()
	analytics := analyticssvc.NewAnalyticsService(analyticssvc.NewMemoryAnalyticsStore(), store, nil, nil, time.UTC)
	completer := &stubCompleter{}
	svc := NewContentService(Dependencies{
		Store:     store,
		Generator: aisvc.NewOrchestrator(completer, nil, nil),
		Analytics: analytics,
	})
	p := principal(primitive.NewObjectID(), authmodels.RoleUser)

	for _, typ := range []string{"blog", "social_post", "email", "design_doc", "changelog", "internal_comm"} {
		t.Run(typ, func(t *testing.T) {
			content, err := svc.Generate(context.Background(), &contentdto.GenerateInput{Type: typ, Prompt: "Announce v2 launch"}, p)
			require.NoError(t, err)
			assert.Equal(t, contentmodels.StatusDraft, content.Status)
			assert.Equal(t, int64(1), content.Version)
			assert.Equal(t, "Announce v2 launch", content.Title)
			assert.Equal(t, "Draft body", content.Body)
			assert.Contains(t, content.Metadata.Prompt, "Announce v2 launch")
		})
	}
	assert.Len(t, completer.prompts, 6)
	assert.Contains(t, completer.prompts[0], `titled "Announce v2 launch"`)
}

type failingRecorder struct{}

func (failingRecorder) CreateRecord(context.Context, *contentmodels.Content) error {
	return errors.New("analytics down")
}

func (failingRecorder) Record(context.Context, primitive.ObjectID) (*analyticsmodels.ContentAnalytics, error) {
	return nil, common.ErrNotFound
}

func TestGenerateRemovesContentWhenAnalyticsRecordFails(t *testing.T) {
	store := NewMemoryContentStore()
	svc := NewContentService(Dependencies{
		Store:     store,
		Generator: &fakeGenerator{text: "body"},
		Analytics: failingRecorder{},
	})
	p := principal(primitive.NewObjectID(), authmodels.RoleUser)

	_, err := svc.Generate(context.Background(), &contentdto.GenerateInput{Type: "changelog", Prompt: "x"}, p)
	require.EqualError(t, err, "analytics down")

	list, err := store.ListCompany(context.Background(), p.CompanyID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list, "không được để lại nội dung thiếu bản ghi analytics")
}

func TestRevisionHistoryAfterEdits(t *testing.T) {
	f := newFixture(t)
	author := principal(primitive.NewObjectID(), authmodels.RoleUser)
	content := f.generate(t, author)

	bodies := []string{content.Body}
	const edits = 5
	for i := 0; i < edits; i++ {
		body := strings.Repeat("v", i+1)
		updated, err := f.svc.Update(context.Background(), content.ID, &contentdto.UpdateInput{Body: &body}, author)
		require.NoError(t, err)
		require.Equal(t, bodies[len(bodies)-1], updated.Revisions[len(updated.Revisions)-1].Body, "revision cuối giữ body trước khi sửa")
		bodies = append(bodies, body)
	}

	got, err := f.svc.Get(context.Background(), content.ID, author)
	require.NoError(t, err)
	assert.Equal(t, int64(1+edits), got.Version)
	assert.Len(t, got.Revisions, edits)
	assert.Equal(t, bodies[edits], got.Body)
	for i, r := range got.Revisions {
		assert.Equal(t, int64(i+1), r.Version)
		assert.Equal(t, bodies[i], r.Body)
	}

	versions, err := f.svc.Versions(context.Background(), content.ID, author)
	require.NoError(t, err)
	require.Len(t, versions, edits+1)
	assert.True(t, versions[0].Current)
	assert.Equal(t, int64(1+edits), versions[0].Version)
	assert.Equal(t, int64(1), versions[edits].Version)
}

func TestUpdateTitleOnlyKeepsVersion(t *testing.T) {
	f := newFixture(t)
	author := principal(primitive.NewObjectID(), authmodels.RoleUser)
	content := f.generate(t, author)

	title := "New title"
	updated, err := f.svc.Update(context.Background(), content.ID, &contentdto.UpdateInput{Title: &title, Tags: []string{"a", "b"}}, author)
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, []string{"a", "b"}, updated.Tags)
	assert.Equal(t, int64(1), updated.Version)
	assert.Empty(t, updated.Revisions)

	same := updated.Body
	updated, err = f.svc.Update(context.Background(), content.ID, &contentdto.UpdateInput{Body: &same}, author)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Version, "body không đổi thì không tạo revision")
}

func TestArchiveLeavesHistoryUntouched(t *testing.T) {
	f := newFixture(t)
	author := principal(primitive.NewObjectID(), authmodels.RoleUser)
	content := f.generate(t, author)
	body := "edited"
	_, err := f.svc.Update(context.Background(), content.ID, &contentdto.UpdateInput{Body: &body}, author)
	require.NoError(t, err)

	archived, err := f.svc.Archive(context.Background(), content.ID, author)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
	assert.Equal(t, contentmodels.StatusArchived, archived.Status)
	assert.Equal(t, int64(2), archived.Version)
	assert.Len(t, archived.Revisions, 1)

	again, err := f.svc.Archive(context.Background(), content.ID, author)
	require.NoError(t, err, "archive lần hai không lỗi")
	assert.Equal(t, int64(2), again.Version)

	_, err = f.svc.Update(context.Background(), content.ID, &contentdto.UpdateInput{Body: &body}, author)
	assert.True(t, common.IsKind(err, common.KindConflict))
	_, err = f.svc.Publish(context.Background(), content.ID, []string{"blog"}, author)
	assert.True(t, common.IsKind(err, common.KindConflict))

	rec, err := f.svc.Analytics(context.Background(), content.ID, author)
	require.NoError(t, err, "bản ghi analytics vẫn còn sau archive")
	assert.Equal(t, content.ID, rec.ContentID)
}

func TestCrossCompanyAccessDenied(t *testing.T) {
	f := newFixture(t)
	owner := principal(primitive.NewObjectID(), authmodels.RoleUser)
	content := f.generate(t, owner)
	outsider := principal(primitive.NewObjectID(), authmodels.RoleAdmin)

	_, err := f.svc.Get(context.Background(), content.ID, outsider)
	assert.True(t, common.IsKind(err, common.KindAuthorization))
	body := "hijack"
	_, err = f.svc.Update(context.Background(), content.ID, &contentdto.UpdateInput{Body: &body}, outsider)
	assert.True(t, common.IsKind(err, common.KindAuthorization))
	_, err = f.svc.Archive(context.Background(), content.ID, outsider)
	assert.True(t, common.IsKind(err, common.KindAuthorization))
	_, err = f.svc.Analytics(context.Background(), content.ID, outsider)
	assert.True(t, common.IsKind(err, common.KindAuthorization))

	list, err := f.svc.List(context.Background(), nil, 1, 10, outsider)
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	_, err = f.svc.Get(context.Background(), primitive.NewObjectID(), owner)
	assert.True(t, common.IsKind(err, common.KindNotFound))
}

func TestEditPermissionsWithinCompany(t *testing.T) {
	f := newFixture(t)
	company := primitive.NewObjectID()
	author := principal(company, authmodels.RoleUser)
	content := f.generate(t, author)
	colleague := principal(company, authmodels.RoleUser)
	editor := principal(company, authmodels.RoleEditor)
	body := "x"

	_, err := f.svc.Get(context.Background(), content.ID, colleague)
	assert.NoError(t, err)
	_, err = f.svc.Update(context.Background(), content.ID, &contentdto.UpdateInput{Body: &body}, colleague)
	assert.True(t, common.IsKind(err, common.KindAuthorization))

	_, err = f.svc.Update(context.Background(), content.ID, &contentdto.UpdateInput{Body: &body}, editor)
	assert.NoError(t, err)

	_, err = f.svc.Improve(context.Background(), content.ID, "shorter", editor)
	assert.True(t, common.IsKind(err, common.KindAuthorization), "chỉ tác giả được improve")

	improved, err := f.svc.Improve(context.Background(), content.ID, "shorter", author)
	require.NoError(t, err)
	assert.Equal(t, "x (shorter)", improved.Body)
	assert.Equal(t, int64(3), improved.Version)
	assert.Equal(t, "x", improved.Revisions[1].Body)
}

func TestPublishScenario(t *testing.T) {
	f := newFixture(t)
	author := principal(primitive.NewObjectID(), authmodels.RoleUser)
	content := f.generate(t, author)

	published, err := f.svc.Publish(context.Background(), content.ID, []string{"linkedin", "blog", "linkedin"}, author)
	require.NoError(t, err)
	assert.Equal(t, contentmodels.StatusPublished, published.Status)
	require.Len(t, published.Distribution.Channels, 2)
	for _, ch := range published.Distribution.Channels {
		assert.Equal(t, contentmodels.ChannelPublished, ch.Status)
		assert.Equal(t, f.now.UnixMilli(), ch.PublishedAt)
	}
	assert.Equal(t, int64(1), published.Version)

	again, err := f.svc.Publish(context.Background(), content.ID, []string{"email"}, author)
	require.NoError(t, err)
	assert.Equal(t, contentmodels.StatusPublished, again.Status)
	assert.Equal(t, []string{"email"}, again.ChannelNames(), "thay toàn bộ kênh")

	_, err = f.svc.Publish(context.Background(), content.ID, nil, author)
	assert.True(t, common.IsKind(err, common.KindValidation))
}

func TestScheduleAndPublishDue(t *testing.T) {
	f := newFixture(t)
	author := principal(primitive.NewObjectID(), authmodels.RoleUser)
	content := f.generate(t, author)
	publishAt := f.now.Add(time.Hour)

	_, err := f.svc.Schedule(context.Background(), content.ID, publishAt, "Mars/Olympus", []string{"blog"}, author)
	assert.True(t, common.IsKind(err, common.KindValidation))
	_, err = f.svc.Schedule(context.Background(), content.ID, f.now.Add(-time.Minute), "UTC", []string{"blog"}, author)
	assert.True(t, common.IsKind(err, common.KindValidation))

	scheduled, err := f.svc.Schedule(context.Background(), content.ID, publishAt, "Asia/Ho_Chi_Minh", []string{"blog", "x"}, author)
	require.NoError(t, err)
	assert.Equal(t, contentmodels.StatusDraft, scheduled.Status, "hẹn giờ không đổi trạng thái")
	require.NotNil(t, scheduled.Distribution.Schedule)
	assert.Equal(t, publishAt.UnixMilli(), scheduled.Distribution.Schedule.PublishAt)
	for _, ch := range scheduled.Distribution.Channels {
		assert.Equal(t, contentmodels.ChannelPending, ch.Status)
	}

	n, err := f.svc.PublishDue(context.Background(), f.now)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "chưa đến hạn")

	n, err = f.svc.PublishDue(context.Background(), publishAt.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.svc.Get(context.Background(), content.ID, author)
	require.NoError(t, err)
	assert.Equal(t, contentmodels.StatusPublished, got.Status)
	assert.Nil(t, got.Distribution.Schedule)
	for _, ch := range got.Distribution.Channels {
		assert.Equal(t, contentmodels.ChannelPublished, ch.Status)
	}

	n, err = f.svc.PublishDue(context.Background(), publishAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, n, "lịch đã được xóa")
}

func TestUpdateChannelStatus(t *testing.T) {
	f := newFixture(t)
	author := principal(primitive.NewObjectID(), authmodels.RoleUser)
	content := f.generate(t, author)
	_, err := f.svc.Schedule(context.Background(), content.ID, f.now.Add(time.Hour), "UTC", []string{"blog", "email"}, author)
	require.NoError(t, err)

	updated, err := f.svc.UpdateChannelStatus(context.Background(), content.ID, "email", contentmodels.ChannelFailed, "smtp down", author)
	require.NoError(t, err)
	assert.Equal(t, "smtp down", updated.Distribution.Channels[1].Error)
	assert.NotNil(t, updated.Distribution.Schedule, "còn kênh pending")

	_, err = f.svc.UpdateChannelStatus(context.Background(), content.ID, "email", contentmodels.ChannelPublished, "", author)
	assert.True(t, common.IsKind(err, common.KindConflict))
	_, err = f.svc.UpdateChannelStatus(context.Background(), content.ID, "tiktok", contentmodels.ChannelPublished, "", author)
	assert.True(t, common.IsKind(err, common.KindNotFound))
	_, err = f.svc.UpdateChannelStatus(context.Background(), content.ID, "blog", contentmodels.ChannelPending, "", author)
	assert.True(t, common.IsKind(err, common.KindValidation))

	updated, err = f.svc.UpdateChannelStatus(context.Background(), content.ID, "blog", contentmodels.ChannelPublished, "", author)
	require.NoError(t, err)
	assert.Equal(t, contentmodels.StatusPublished, updated.Status)
	assert.Nil(t, updated.Distribution.Schedule)
}

func TestRestoreVersion(t *testing.T) {
	f := newFixture(t)
	author := principal(primitive.NewObjectID(), authmodels.RoleUser)
	content := f.generate(t, author)
	body := "second"
	_, err := f.svc.Update(context.Background(), content.ID, &contentdto.UpdateInput{Body: &body}, author)
	require.NoError(t, err)

	restored, err := f.svc.RestoreVersion(context.Background(), content.ID, 1, author)
	require.NoError(t, err)
	assert.Equal(t, "Generated body", restored.Body)
	assert.Equal(t, int64(3), restored.Version)
	last := restored.Revisions[len(restored.Revisions)-1]
	assert.Equal(t, "second", last.Body)
	assert.Equal(t, "restored to version 1", last.ChangeNote)

	_, err = f.svc.RestoreVersion(context.Background(), content.ID, 99, author)
	assert.True(t, common.IsKind(err, common.KindNotFound))
}

func TestConcurrentEditGetsConflict(t *testing.T) {
	f := newFixture(t)
	author := principal(primitive.NewObjectID(), authmodels.RoleUser)
	content := f.generate(t, author)

	stale, err := f.store.FindByID(context.Background(), content.ID)
	require.NoError(t, err)

	_, err = f.svc.AddRevision(context.Background(), content.ID, author.AccountID, "winner", "")
	require.NoError(t, err)

	applyRevision(stale, author.AccountID, "loser", "", f.now.UnixMilli())
	err = f.store.Replace(context.Background(), stale, 1)
	assert.True(t, common.IsKind(err, common.KindConflict))

	got, err := f.store.FindByID(context.Background(), content.ID)
	require.NoError(t, err)
	assert.Equal(t, "winner", got.Body)
	assert.Equal(t, int64(2), got.Version)
}

func TestBulkOperations(t *testing.T) {
	f := newFixture(t)
	company := primitive.NewObjectID()
	admin := principal(company, authmodels.RoleAdmin)
	a := f.generate(t, admin)
	b := f.generate(t, admin)
	foreign := f.generate(t, principal(primitive.NewObjectID(), authmodels.RoleAdmin))

	_, err := f.svc.BulkArchive(context.Background(), []primitive.ObjectID{a.ID}, principal(company, authmodels.RoleEditor))
	assert.True(t, common.IsKind(err, common.KindAuthorization))

	res, err := f.svc.BulkPublish(context.Background(), []primitive.ObjectID{a.ID, b.ID, foreign.ID, a.ID}, []string{"blog"}, admin)
	require.NoError(t, err)
	assert.Equal(t, contentmodels.BulkResult{Requested: 3, Matched: 2, Modified: 2}, *res)

	_, err = f.svc.Archive(context.Background(), b.ID, admin)
	require.NoError(t, err)
	res, err = f.svc.BulkArchive(context.Background(), []primitive.ObjectID{a.ID, b.ID}, admin)
	require.NoError(t, err)
	assert.Equal(t, contentmodels.BulkResult{Requested: 2, Matched: 2, Modified: 1}, *res)

	got, err := f.svc.Get(context.Background(), foreign.ID, principal(foreign.CompanyID, authmodels.RoleUser))
	require.NoError(t, err)
	assert.Equal(t, contentmodels.StatusDraft, got.Status, "nội dung công ty khác không bị đụng tới")
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	company := primitive.NewObjectID()
	author := principal(company, authmodels.RoleUser)
	first := f.generate(t, author)
	f.now = f.now.Add(time.Minute)
	second, err := f.svc.Generate(context.Background(), &contentdto.GenerateInput{
		Type: "social_post", Prompt: "Launch party", Tags: []string{"event"},
	}, author)
	require.NoError(t, err)
	_, err = f.svc.Archive(context.Background(), first.ID, author)
	require.NoError(t, err)

	list, err := f.svc.List(context.Background(), nil, 1, 10, author)
	require.NoError(t, err)
	require.Len(t, list.Items, 1, "mặc định ẩn nội dung đã archive")
	assert.Equal(t, second.ID, list.Items[0].ID)

	list, err = f.svc.List(context.Background(), &contentdto.ListQuery{Status: contentmodels.StatusArchived}, 1, 10, author)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, first.ID, list.Items[0].ID)

	list, err = f.svc.List(context.Background(), &contentdto.ListQuery{Search: "LAUNCH"}, 1, 10, author)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	list, err = f.svc.List(context.Background(), &contentdto.ListQuery{Tag: "event", Type: "social_post", AuthorID: author.AccountID.Hex()}, 1, 10, author)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	_, err = f.svc.List(context.Background(), &contentdto.ListQuery{AuthorID: "bad"}, 1, 10, author)
	assert.True(t, common.IsKind(err, common.KindValidation))
}

func TestUpstreamFailureCreatesNothing(t *testing.T) {
	f := newFixture(t)
	f.gen.err = common.NewUpstreamError("llm", 500, "boom")
	p := principal(primitive.NewObjectID(), authmodels.RoleUser)

	_, err := f.svc.Generate(context.Background(), &contentdto.GenerateInput{Type: "changelog", Prompt: "x"}, p)
	assert.True(t, common.IsKind(err, common.KindUpstream))

	list, err := f.svc.List(context.Background(), nil, 1, 10, p)
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}
