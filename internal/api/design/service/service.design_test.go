package designsvc

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authmodels "content_studio/internal/api/auth/models"
	contentmodels "content_studio/internal/api/content/models"
	"content_studio/internal/cache"
	"content_studio/internal/common"
	"content_studio/internal/designtool"
)

type fakeTokens struct {
	mu       sync.Mutex
	token    string
	err      error
	syncedAt int64
}

func (f *fakeTokens) IntegrationToken(context.Context, primitive.ObjectID) (string, error) {
	return f.token, f.err
}

func (f *fakeTokens) MarkSynced(_ context.Context, _ primitive.ObjectID, at int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncedAt = at
	return nil
}

const brandFile = `{"name":"Brand","version":"42","document":{"id":"0:0","name":"Document","type":"DOCUMENT","children":[
	{"id":"1:0","name":"Page","type":"CANVAS","children":[
		{"id":"1:1","name":"Primary","type":"RECTANGLE","fills":[{"type":"SOLID","color":{"r":1,"g":0,"b":0,"a":1}}]},
		{"id":"1:2","name":"Primary copy","type":"RECTANGLE","fills":[{"type":"SOLID","color":{"r":1,"g":0,"b":0,"a":1}}],
			"strokes":[{"type":"SOLID","color":{"r":0,"g":0,"b":1,"a":1}}]},
		{"id":"1:3","name":"Gradient","type":"RECTANGLE","fills":[{"type":"GRADIENT_LINEAR"}]},
		{"id":"1:4","name":"Hidden fill","type":"RECTANGLE","fills":[{"type":"SOLID","visible":false,"color":{"r":0,"g":1,"b":0,"a":1}}]},
		{"id":"1:5","name":"Heading","type":"TEXT","style":{"fontFamily":"Inter","fontWeight":700,"fontSize":32}},
		{"id":"1:6","name":"Heading 2","type":"TEXT","style":{"fontFamily":"Inter","fontWeight":700,"fontSize":32}},
		{"id":"1:7","name":"Card","type":"FRAME","layoutMode":"VERTICAL","paddingTop":16,"paddingBottom":16,"paddingLeft":24,"paddingRight":24,"itemSpacing":8,
			"effects":[{"type":"DROP_SHADOW","visible":true,"radius":4,"color":{"r":0,"g":0,"b":0,"a":0.25},"offset":{"x":0,"y":2}}],
			"children":[{"id":"1:8","name":"Card title","type":"TEXT","style":{"fontFamily":"Inter","fontWeight":400,"fontSize":16}}]}
	]}
]}}`

type fixture struct {
	svc    *DesignService
	tokens *fakeTokens
	hits   *int64
	mr     *miniredis.Miniredis
	p      authmodels.Principal
}

func newFixture(t *testing.T, handler http.HandlerFunc) *fixture {
	t.Helper()
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	mr := miniredis.RunT(t)
	redisCache := cache.NewRedisCache(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), "test:")
	t.Cleanup(func() { _ = redisCache.Close() })

	tokens := &fakeTokens{token: "tok"}
	svc := NewDesignService(designtool.NewClient(designtool.Config{APIURL: server.URL}), tokens, redisCache, time.Minute, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC) }
	return &fixture{
		svc:    svc,
		tokens: tokens,
		hits:   &hits,
		mr:     mr,
		p:      authmodels.Principal{AccountID: primitive.NewObjectID(), CompanyID: primitive.NewObjectID(), Role: authmodels.RoleUser},
	}
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, "#ff0000", HexColor(designtool.Color{R: 1}))
	assert.Equal(t, "#808080", HexColor(designtool.Color{R: 0.5, G: 0.5, B: 0.5}))
	assert.Equal(t, "#00ff00", HexColor(designtool.Color{R: -0.2, G: 1.4}), "giá trị ngoài [0,1] bị kẹp")
}

func TestExtractDesignTokens(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/files/abc", r.URL.Path)
		fmt.Fprint(w, brandFile)
	})

	tokens, err := f.svc.ExtractDesignTokens(context.Background(), f.p, "abc")
	require.NoError(t, err)

	assert.Equal(t, "Brand", tokens.FileName)
	assert.Equal(t, "42", tokens.Version)
	require.Len(t, tokens.Colors, 2, "fill solid trùng chỉ còn một mã hex")
	assert.Equal(t, "#ff0000", tokens.Colors[0].Hex)
	assert.Equal(t, 2, tokens.Colors[0].Usage)
	assert.Equal(t, "Primary", tokens.Colors[0].Name)
	assert.Equal(t, "#0000ff", tokens.Colors[1].Hex)

	require.Len(t, tokens.Typography, 2)
	assert.Equal(t, 32.0, tokens.Typography[0].FontSize)
	assert.Equal(t, 16.0, tokens.Typography[1].FontSize)

	require.Len(t, tokens.Spacing, 1)
	assert.Equal(t, 24.0, tokens.Spacing[0].Left)
	assert.Equal(t, 8.0, tokens.Spacing[0].ItemSpacing)

	require.Len(t, tokens.Effects, 1)
	assert.Equal(t, "#000000", tokens.Effects[0].Color)
	assert.Equal(t, 2.0, tokens.Effects[0].OffsetY)

	again, err := f.svc.ExtractDesignTokens(context.Background(), f.p, "abc")
	require.NoError(t, err)
	assert.Equal(t, tokens, again)
	assert.Equal(t, int64(1), atomic.LoadInt64(f.hits), "lần hai đọc từ cache")
	assert.True(t, f.mr.Exists("test:design:"+f.p.CompanyID.Hex()+":tokens:abc"))

	_, err = f.svc.SearchNodes(context.Background(), f.p, "abc", "card", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), atomic.LoadInt64(f.hits), "cây tài liệu cũng được cache")
}

func TestCollectTokensEmptyTree(t *testing.T) {
	tokens := CollectTokens(&designtool.Node{ID: "0:0", Type: "DOCUMENT"})
	assert.NotNil(t, tokens.Colors)
	assert.Empty(t, tokens.Colors)
	assert.NotNil(t, tokens.Effects)
}

func TestSearchNodes(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, brandFile)
	})

	matches, err := f.svc.SearchNodes(context.Background(), f.p, "abc", "CARD", 0)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "1:7", matches[0].ID)
	assert.Equal(t, "Document / Page / Card / Card title", matches[1].Path)

	limited, err := f.svc.SearchNodes(context.Background(), f.p, "abc", "primary", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = f.svc.SearchNodes(context.Background(), f.p, "abc", "  ", 0)
	assert.True(t, common.IsKind(err, common.KindValidation))
}

func TestSyncDesignElements(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("ids")
		switch r.URL.Path {
		case "/v1/files/abc/nodes":
			fmt.Fprintf(w, `{"name":"Brand","nodes":{%q:{"document":{"id":%q,"name":"Node %s","type":"FRAME"}}}}`, id, id, id)
		case "/v1/images/abc":
			assert.Equal(t, "png", r.URL.Query().Get("format"))
			fmt.Fprintf(w, `{"err":null,"images":{%q:"https://img.example/%s.png"}}`, id, id)
		default:
			http.NotFound(w, r)
		}
	})

	refs := []contentmodels.DesignRef{{NodeID: "1:1", Type: "hero"}, {NodeID: "2:2"}, {NodeID: "3:3", Type: "logo"}}
	elements, err := f.svc.SyncDesignElements(context.Background(), f.p, "abc", refs)
	require.NoError(t, err)
	require.Len(t, elements, 3)

	syncedAt := f.svc.now().UnixMilli()
	for i, el := range elements {
		assert.Equal(t, refs[i].NodeID, el.NodeID, "giữ thứ tự refs")
		assert.Equal(t, "abc", el.FileID)
		assert.Equal(t, "Node "+refs[i].NodeID, el.Name)
		assert.Equal(t, "https://img.example/"+refs[i].NodeID+".png", el.URL)
		assert.Equal(t, syncedAt, el.LastSyncedAt)
	}
	assert.Equal(t, "hero", elements[0].Type)
	assert.Equal(t, "FRAME", elements[1].Type, "type rỗng lấy theo node")
	assert.Equal(t, syncedAt, f.tokens.syncedAt)
}

func TestSyncDesignElementsMissingNode(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"name":"Brand","nodes":{"9:9":null}}`)
	})

	_, err := f.svc.SyncDesignElements(context.Background(), f.p, "abc", []contentmodels.DesignRef{{NodeID: "9:9"}})
	assert.True(t, common.IsKind(err, common.KindNotFound))
	assert.Zero(t, f.tokens.syncedAt)
}

func TestUpstreamStatusMapping(t *testing.T) {
	cases := map[int]common.ErrorKind{
		http.StatusUnauthorized:        common.KindAuthentication,
		http.StatusForbidden:           common.KindAuthorization,
		http.StatusNotFound:            common.KindNotFound,
		http.StatusTooManyRequests:     common.KindRateLimit,
		http.StatusInternalServerError: common.KindUpstream,
		http.StatusBadGateway:          common.KindUpstream,
	}
	for status, kind := range cases {
		t.Run(http.StatusText(status), func(t *testing.T) {
			f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				fmt.Fprintf(w, `{"status":%d,"err":"boom"}`, status)
			})
			_, err := f.svc.GetStyles(context.Background(), f.p, "abc")
			assert.Equal(t, kind, common.KindOf(err))
		})
	}
}

func TestMissingIntegration(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("không được gọi API khi chưa có token")
	})
	f.tokens.err = common.ErrIntegrationUnset

	_, err := f.svc.GetFile(context.Background(), f.p, "abc")
	assert.ErrorIs(t, err, common.ErrIntegrationUnset)
	_, err = f.svc.SyncDesignElements(context.Background(), f.p, "abc", []contentmodels.DesignRef{{NodeID: "1:1"}})
	assert.ErrorIs(t, err, common.ErrIntegrationUnset)
	assert.Equal(t, int64(0), atomic.LoadInt64(f.hits))
}

func TestBatchFilesKeepsPerFileErrors(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/files/missing" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"status":404,"err":"Not found"}`)
			return
		}
		fmt.Fprint(w, `{"name":"ok"}`)
	})

	results, err := f.svc.BatchFiles(context.Background(), f.p, []string{"a", "missing", "b"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].FileKey)
	assert.JSONEq(t, `{"name":"ok"}`, string(results[0].File))
	assert.Equal(t, "missing", results[1].FileKey)
	assert.NotEmpty(t, results[1].Error)
	assert.Nil(t, results[1].File)
	assert.Empty(t, results[2].Error)
}

func TestExportImagesSkipsNullURLs(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "svg", r.URL.Query().Get("format"))
		fmt.Fprint(w, `{"err":null,"images":{"1:1":"https://img/1.svg","2:2":null}}`)
	})

	images, err := f.svc.ExportImages(context.Background(), f.p, "abc", []string{"1:1", "2:2"}, designtool.ImageOptions{Format: "svg"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1:1": "https://img/1.svg"}, images)

	_, err = f.svc.ExportImages(context.Background(), f.p, "abc", nil, designtool.ImageOptions{})
	assert.True(t, common.IsKind(err, common.KindValidation))
}

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"1:1", "2:2"}, SplitIDs(" 1:1, ,2:2,"))
	assert.Empty(t, SplitIDs(""))
}

func TestConcurrentFileFetchesShareOneRequest(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		fmt.Fprint(w, brandFile)
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SearchNodes(context.Background(), f.p, "abc", "card", 0)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), atomic.LoadInt64(f.hits))
}
