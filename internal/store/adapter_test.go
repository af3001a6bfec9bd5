package store

import (
	"brandtheme/internal/backends/memory"
	"brandtheme/internal/types"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/suite"
)

type recordingInvalidator struct {
	mu       sync.Mutex
	adapter  *Adapter
	keys     []string
	clears   int
	observed []string
}

// Invalidate records the tenant and reads it back through the adapter, which must already see the
// new document.
func (r *recordingInvalidator) Invalidate(tenantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, tenantID)
	if r.adapter != nil {
		cfg, err := r.adapter.Get(context.Background(), tenantID)
		if err == nil {
			r.observed = append(r.observed, cfg.CustomerName)
		}
	}
}

func (r *recordingInvalidator) Clear() {
	r.mu.Lock()
	r.clears++
	r.mu.Unlock()
}

type recordingPublisher struct {
	mu     sync.Mutex
	arn    string
	events []types.BrandEvent
	fail   bool
}

func (p *recordingPublisher) PublishRaw(_ context.Context, arn string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("sns unavailable")
	}
	var evt types.BrandEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return err
	}
	p.arn = arn
	p.events = append(p.events, evt)
	return nil
}

// countingStore counts backend reads so cache behavior is observable.
type countingStore struct {
	*memory.ConfigStore
	mu    sync.Mutex
	reads int
}

func (c *countingStore) GetBrandConfig(ctx context.Context, tenantID string) (types.BrandConfig, error) {
	c.mu.Lock()
	c.reads++
	c.mu.Unlock()
	return c.ConfigStore.GetBrandConfig(ctx, tenantID)
}

type AdapterTestSuite struct {
	suite.Suite
	ctx     context.Context
	backend *countingStore
	adapter *Adapter
}

func TestAdapterTestSuite(t *testing.T) {
	suite.Run(t, new(AdapterTestSuite))
}

func acme(name string) types.BrandConfig {
	return types.BrandConfig{
		CustomerName: name,
		Colors:       map[string]string{"primary": "#ff0000", "text": "#111111"},
		Fonts: types.FontSet{
			Primary: &types.FontFamily{Name: "Inter", Variants: []types.FontVariant{
				{File: "Inter-Bold.woff2", Weight: 700, Style: "normal"},
				{File: "Inter-Regular.woff2", Weight: 400, Style: "normal"},
				{File: "Inter-Italic.woff2", Weight: 400, Style: "italic"},
			}},
		},
		Logos: map[string]string{"header": "logo.svg"},
	}
}

func (s *AdapterTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.backend = &countingStore{ConfigStore: memory.NewConfigStore(map[string]types.BrandConfig{
		"acme":  acme("Acme"),
		"beta":  {CustomerName: "Beta", Fonts: types.FontSet{Primary: &types.FontFamily{Name: "Roboto"}}},
		"gamma": {CustomerName: "", Fonts: types.FontSet{Primary: &types.FontFamily{Name: "Roboto"}}},
	})}
	s.adapter = NewAdapter(s.backend)
}

func (s *AdapterTestSuite) TestGetIsCaseInsensitiveAndSorted() {
	cfg, err := s.adapter.Get(s.ctx, "ACME")
	s.Require().NoError(err)
	s.Equal("Acme", cfg.CustomerName)

	v := cfg.Fonts.Primary.Variants
	s.Require().Len(v, 3)
	s.Equal(types.FontVariant{File: "Inter-Italic.woff2", Weight: 400, Style: "italic"}, v[0])
	s.Equal(types.FontVariant{File: "Inter-Regular.woff2", Weight: 400, Style: "normal"}, v[1])
	s.Equal(700, v[2].Weight)
}

func (s *AdapterTestSuite) TestGetIsCached() {
	_, err := s.adapter.Get(s.ctx, "acme")
	s.Require().NoError(err)
	_, err = s.adapter.Get(s.ctx, "Acme")
	s.Require().NoError(err)
	s.Equal(1, s.backend.reads)
}

func (s *AdapterTestSuite) TestCallerMutationDoesNotLeakIntoCache() {
	cfg, err := s.adapter.Get(s.ctx, "acme")
	s.Require().NoError(err)
	cfg.Colors["primary"] = "#000000"
	cfg.Fonts.Primary.Variants[0].File = "tampered.woff2"

	again, err := s.adapter.Get(s.ctx, "acme")
	s.Require().NoError(err)
	s.Equal("#ff0000", again.Colors["primary"])
	s.Equal("Inter-Italic.woff2", again.Fonts.Primary.Variants[0].File)
}

func (s *AdapterTestSuite) TestGetErrors() {
	_, err := s.adapter.Get(s.ctx, "nope")
	s.ErrorIs(err, types.ErrNotFound)

	_, err = s.adapter.Get(s.ctx, "gamma")
	s.ErrorIs(err, types.ErrConfigMalformed)
}

func (s *AdapterTestSuite) TestExists() {
	ok, err := s.adapter.Exists(s.ctx, "BETA")
	s.NoError(err)
	s.True(ok)

	ok, err = s.adapter.Exists(s.ctx, "nope")
	s.NoError(err)
	s.False(ok)

	ok, err = s.adapter.Exists(s.ctx, "gamma")
	s.NoError(err)
	s.True(ok)
}

func (s *AdapterTestSuite) TestListIDs() {
	ids, err := s.adapter.ListIDs(s.ctx)
	s.NoError(err)
	s.Equal([]string{"acme", "beta", "gamma"}, ids)
}

func (s *AdapterTestSuite) TestReplaceIsVisibleImmediately() {
	_, err := s.adapter.Get(s.ctx, "acme")
	s.Require().NoError(err)

	s.Require().NoError(s.adapter.Replace(s.ctx, "Acme", acme("Acme Corp")))

	cfg, err := s.adapter.Get(s.ctx, "acme")
	s.NoError(err)
	s.Equal("Acme Corp", cfg.CustomerName)
}

func (s *AdapterTestSuite) TestReplaceUnknownTenant() {
	err := s.adapter.Replace(s.ctx, "nope", acme("Nope"))
	s.ErrorIs(err, types.ErrNotFound)

	_, err = s.backend.ConfigStore.GetBrandConfig(s.ctx, "nope")
	s.ErrorIs(err, types.ErrNotFound)
}

func (s *AdapterTestSuite) TestReplaceRejectsInvalidConfig() {
	bad := acme("Acme")
	bad.Colors["notARole"] = "#fff"
	s.ErrorIs(s.adapter.Replace(s.ctx, "acme", bad), types.ErrInvalidBrandConfig)

	bad = acme("")
	s.ErrorIs(s.adapter.Replace(s.ctx, "acme", bad), types.ErrInvalidBrandConfig)

	cfg, err := s.adapter.Get(s.ctx, "acme")
	s.NoError(err)
	s.Equal("Acme", cfg.CustomerName)
}

func (s *AdapterTestSuite) TestReplaceRepairsMalformedTenant() {
	s.Require().NoError(s.adapter.Replace(s.ctx, "gamma", acme("Gamma")))
	cfg, err := s.adapter.Get(s.ctx, "gamma")
	s.NoError(err)
	s.Equal("Gamma", cfg.CustomerName)
}

func (s *AdapterTestSuite) TestCreate() {
	s.Require().NoError(s.adapter.Create(s.ctx, "Delta", acme("Delta")))
	cfg, err := s.adapter.Get(s.ctx, "delta")
	s.NoError(err)
	s.Equal("Delta", cfg.CustomerName)

	s.ErrorIs(s.adapter.Create(s.ctx, "acme", acme("Again")), types.ErrAlreadyExists)
}

func (s *AdapterTestSuite) TestDelete() {
	_, err := s.adapter.Get(s.ctx, "beta")
	s.Require().NoError(err)

	s.Require().NoError(s.adapter.Delete(s.ctx, "beta"))
	_, err = s.adapter.Get(s.ctx, "beta")
	s.ErrorIs(err, types.ErrNotFound)

	s.ErrorIs(s.adapter.Delete(s.ctx, "beta"), types.ErrNotFound)
}

func (s *AdapterTestSuite) TestDependentsSeeNewDocumentOnInvalidate() {
	rec := &recordingInvalidator{adapter: s.adapter}
	s.adapter.OnInvalidate(rec)

	_, err := s.adapter.Get(s.ctx, "acme")
	s.Require().NoError(err)
	s.Require().NoError(s.adapter.Replace(s.ctx, "ACME", acme("Acme Corp")))

	s.Equal([]string{"acme"}, rec.keys)
	s.Equal([]string{"Acme Corp"}, rec.observed)

	s.adapter.InvalidateAll()
	s.Equal(1, rec.clears)
}

func (s *AdapterTestSuite) TestOutOfBandWriteNeedsInvalidate() {
	_, err := s.adapter.Get(s.ctx, "acme")
	s.Require().NoError(err)

	s.Require().NoError(s.backend.PutBrandConfig(s.ctx, "acme", acme("Edited")))
	cfg, _ := s.adapter.Get(s.ctx, "acme")
	s.Equal("Acme", cfg.CustomerName)

	s.adapter.Invalidate("acme")
	cfg, err = s.adapter.Get(s.ctx, "acme")
	s.NoError(err)
	s.Equal("Edited", cfg.CustomerName)
}

func (s *AdapterTestSuite) TestWritesPublishEvents() {
	p := &recordingPublisher{}
	a := NewAdapter(s.backend, WithEvents(p, "arn:aws:sns:us-east-1:000000000000:brands"))

	s.Require().NoError(a.Create(s.ctx, "delta", acme("Delta")))
	s.Require().NoError(a.Replace(s.ctx, "delta", acme("Delta 2")))
	s.Require().NoError(a.Delete(s.ctx, "Delta"))

	s.Equal("arn:aws:sns:us-east-1:000000000000:brands", p.arn)
	s.Equal([]types.BrandEvent{
		{Type: types.EventBrandCreated, Tenant: "delta"},
		{Type: types.EventBrandUpdated, Tenant: "delta"},
		{Type: types.EventBrandDeleted, Tenant: "delta"},
	}, p.events)
}

func (s *AdapterTestSuite) TestPublishFailureDoesNotFailWrite() {
	a := NewAdapter(s.backend, WithEvents(&recordingPublisher{fail: true}, "arn"))
	s.NoError(a.Replace(s.ctx, "acme", acme("Acme Corp")))
	cfg, err := a.Get(s.ctx, "acme")
	s.NoError(err)
	s.Equal("Acme Corp", cfg.CustomerName)
}

func (s *AdapterTestSuite) TestUpsertFontVariant() {
	replaced, err := s.adapter.UpsertFontVariant(s.ctx, "acme", types.FontSlotPrimary, "",
		types.FontVariant{File: "Inter-Light.woff2", Weight: 300, Style: "normal"})
	s.Require().NoError(err)
	s.False(replaced)

	replaced, err = s.adapter.UpsertFontVariant(s.ctx, "acme", types.FontSlotPrimary, "",
		types.FontVariant{File: "Inter-Bold-v2.woff2", Weight: 700, Style: "normal"})
	s.Require().NoError(err)
	s.True(replaced)

	cfg, err := s.adapter.Get(s.ctx, "acme")
	s.Require().NoError(err)
	v := cfg.Fonts.Primary.Variants
	s.Require().Len(v, 4)
	s.Equal(300, v[0].Weight)
	s.Equal(types.FontVariant{File: "Inter-Bold-v2.woff2", Weight: 700, Style: "normal"}, v[3])
}

// Upserting an existing (weight, style) leaves the variant count unchanged for any starting set.
func (s *AdapterTestSuite) TestUpsertExistingKeepsCount() {
	for _, existing := range acme("Acme").Fonts.Primary.Variants {
		before, err := s.adapter.Get(s.ctx, "acme")
		s.Require().NoError(err)

		replaced, err := s.adapter.UpsertFontVariant(s.ctx, "acme", types.FontSlotPrimary, "",
			types.FontVariant{File: "x-" + existing.File, Weight: existing.Weight, Style: existing.Style})
		s.Require().NoError(err)
		s.True(replaced)

		after, err := s.adapter.Get(s.ctx, "acme")
		s.Require().NoError(err)
		s.Len(after.Fonts.Primary.Variants, len(before.Fonts.Primary.Variants))
	}
}

func (s *AdapterTestSuite) TestUpsertCreatesSecondaryFamily() {
	_, err := s.adapter.UpsertFontVariant(s.ctx, "beta", types.FontSlotSecondary, "Merriweather",
		types.FontVariant{File: "Merriweather.ttf", Weight: 400, Style: "normal"})
	s.Require().NoError(err)

	cfg, err := s.adapter.Get(s.ctx, "beta")
	s.Require().NoError(err)
	s.Require().NotNil(cfg.Fonts.Secondary)
	s.Equal("Merriweather", cfg.Fonts.Secondary.Name)
	s.Len(cfg.Fonts.Secondary.Variants, 1)
}

func (s *AdapterTestSuite) TestUpsertRejectsBadInput() {
	_, err := s.adapter.UpsertFontVariant(s.ctx, "acme", types.FontSlotPrimary, "",
		types.FontVariant{File: "x.woff2", Weight: 950, Style: "normal"})
	s.ErrorIs(err, types.ErrInvalidBrandConfig)

	_, err = s.adapter.UpsertFontVariant(s.ctx, "acme", "tertiary", "",
		types.FontVariant{File: "x.woff2", Weight: 400, Style: "normal"})
	s.ErrorIs(err, types.ErrInvalidBrandConfig)

	_, err = s.adapter.UpsertFontVariant(s.ctx, "nope", types.FontSlotPrimary, "",
		types.FontVariant{File: "x.woff2", Weight: 400, Style: "normal"})
	s.ErrorIs(err, types.ErrNotFound)
}

func (s *AdapterTestSuite) TestDeleteFontVariant() {
	s.Require().NoError(s.adapter.DeleteFontVariant(s.ctx, "acme", types.FontSlotPrimary, 400, "italic"))
	cfg, err := s.adapter.Get(s.ctx, "acme")
	s.Require().NoError(err)
	s.Len(cfg.Fonts.Primary.Variants, 2)

	s.ErrorIs(s.adapter.DeleteFontVariant(s.ctx, "acme", types.FontSlotPrimary, 400, "italic"), types.ErrNotFound)
	s.ErrorIs(s.adapter.DeleteFontVariant(s.ctx, "acme", types.FontSlotSecondary, 400, "normal"), types.ErrNotFound)
}

func (s *AdapterTestSuite) TestUpdateColors() {
	s.Require().NoError(s.adapter.UpdateColors(s.ctx, "acme", map[string]string{"primary": "#00ff00", "link": "#0000ff"}))
	cfg, err := s.adapter.Get(s.ctx, "acme")
	s.Require().NoError(err)
	s.Equal("#00ff00", cfg.Colors["primary"])
	s.Equal("#0000ff", cfg.Colors["link"])
	s.Equal("#111111", cfg.Colors["text"])

	s.ErrorIs(s.adapter.UpdateColors(s.ctx, "acme", map[string]string{"sparkle": "#fff"}), types.ErrInvalidBrandConfig)
}

func (s *AdapterTestSuite) TestConcurrentUpsertsCompose() {
	var wg sync.WaitGroup
	weights := []int{100, 200, 300, 500, 600, 800, 900}
	for _, w := range weights {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			_, err := s.adapter.UpsertFontVariant(s.ctx, "acme", types.FontSlotPrimary, "",
				types.FontVariant{File: "f.woff2", Weight: w, Style: "normal"})
			s.NoError(err)
		}(w)
	}
	wg.Wait()

	cfg, err := s.adapter.Get(s.ctx, "acme")
	s.Require().NoError(err)
	s.Len(cfg.Fonts.Primary.Variants, 3+len(weights))
}
