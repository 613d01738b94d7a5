package secret

import (
	"context"
	"errors"
	"testing"
)

// stubProvider answers from a fixed map, or from resolve when set.
type stubProvider struct {
	name    string
	values  map[string]string
	resolve func(ref string) (string, error)
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Resolve(_ context.Context, ref string) (string, error) {
	if s.resolve != nil {
		return s.resolve(ref)
	}
	return s.values[ref], nil
}

func (s *stubProvider) Close() error { return nil }

func TestParseRef(t *testing.T) {
	tests := []struct {
		value   string
		want    Ref
		wantOK  bool
		wantErr error
	}{
		{value: "secretref:jules:1", want: Ref{Provider: "jules", Name: "1"}, wantOK: true},
		{value: "secretref:vault:team:key", want: Ref{Provider: "vault", Name: "team:key"}, wantOK: true},
		{value: "AQ.plain", wantOK: false},
		{value: "secretref:jules:", wantOK: true, wantErr: ErrInvalidRef},
		{value: "secretref::1", wantOK: true, wantErr: ErrInvalidRef},
		{value: "secretref:jules", wantOK: true, wantErr: ErrInvalidRef},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok, err := ParseRef(tt.value)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRef() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRef_String(t *testing.T) {
	if got := (Ref{Provider: "jules", Name: "next"}).String(); got != "secretref:jules:next" {
		t.Errorf("String() = %q", got)
	}
}

func TestResolver_ResolveValue(t *testing.T) {
	r := NewResolver(true, &stubProvider{name: "stub", values: map[string]string{
		"alpha": "one",
		"beta":  "two",
	}})

	tests := []struct {
		value string
		want  string
	}{
		{"secretref:stub:alpha", "one"},
		{"Bearer secretref:stub:beta", "Bearer two"},
		{"secretref:stub:alpha,secretref:stub:beta", "one,two"},
		{"no refs here", "no refs here"},
	}
	for _, tt := range tests {
		got, err := r.ResolveValue(context.Background(), tt.value)
		if err != nil {
			t.Fatalf("ResolveValue(%q) error = %v", tt.value, err)
		}
		if got != tt.want {
			t.Errorf("ResolveValue(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestResolver_EmptyValue(t *testing.T) {
	stub := &stubProvider{name: "stub", values: map[string]string{"empty": ""}}

	_, err := NewResolver(true, stub).ResolveValue(context.Background(), "secretref:stub:empty")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("strict: err = %v, want ErrNotFound", err)
	}

	got, err := NewResolver(false, stub).ResolveValue(context.Background(), "x=secretref:stub:empty")
	if err != nil || got != "x=" {
		t.Fatalf("lenient: ResolveValue() = (%q, %v), want (\"x=\", nil)", got, err)
	}
}

func TestResolver_ProviderErrorPropagates(t *testing.T) {
	boom := errors.New("explode")
	r := NewResolver(true, &stubProvider{name: "stub", resolve: func(string) (string, error) {
		return "", boom
	}})

	for _, v := range []string{"secretref:stub:x", "Bearer secretref:stub:x"} {
		if _, err := r.ResolveValue(context.Background(), v); !errors.Is(err, boom) {
			t.Errorf("ResolveValue(%q) err = %v, want %v", v, err, boom)
		}
	}
}

func TestResolver_UnregisteredProvider(t *testing.T) {
	r := NewResolver(true)

	_, err := r.ResolveValue(context.Background(), "secretref:jules:1")
	if !errors.Is(err, ErrInvalidRef) {
		t.Fatalf("err = %v, want ErrInvalidRef", err)
	}
}

func TestResolver_MalformedWholeRef(t *testing.T) {
	r := NewResolver(true, NewSlotProvider(NewAccessor(WithLookup(MapLookup(nil)))))

	if _, err := r.ResolveValue(context.Background(), "secretref:jules:"); !errors.Is(err, ErrInvalidRef) {
		t.Fatalf("err = %v, want ErrInvalidRef", err)
	}
}

func TestResolver_SlotProviderWithLookup(t *testing.T) {
	lookup := MapLookup(map[string]string{
		"JULES_API_KEY_3": "AQ.three",
		"SLOT":            "3",
	})
	r := NewResolver(true, NewSlotProvider(NewAccessor(WithLookup(lookup))))
	r.SetLookup(lookup)

	got, err := r.ResolveValue(context.Background(), "Bearer secretref:jules:${SLOT}")
	if err != nil {
		t.Fatalf("ResolveValue() error = %v", err)
	}
	if got != "Bearer AQ.three" {
		t.Fatalf("ResolveValue() = %q, want %q", got, "Bearer AQ.three")
	}
}

func TestResolver_ResolveSliceKeepsOrder(t *testing.T) {
	lookup := MapLookup(map[string]string{"JULES_API_KEYS_ALL": "k1,k2"})
	r := NewResolver(true, NewSlotProvider(NewAccessor(WithLookup(lookup))))

	got, err := r.ResolveSlice(context.Background(), []string{
		"secretref:jules:next", "secretref:jules:next", "secretref:jules:next",
	})
	if err != nil {
		t.Fatalf("ResolveSlice() error = %v", err)
	}
	want := []string{"k1", "k2", "k1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ResolveSlice() = %v, want %v", got, want)
		}
	}

	if _, err := r.ResolveSlice(context.Background(), []string{"ok", "${MISSING}"}); err == nil {
		t.Fatal("expected error for missing variable")
	}
}

func TestResolver_NilUsesProcessEnv(t *testing.T) {
	t.Setenv("RESOLVER_NIL", "v")

	var r *Resolver
	got, err := r.ResolveValue(context.Background(), "${RESOLVER_NIL}")
	if err != nil || got != "v" {
		t.Fatalf("ResolveValue() = (%q, %v), want (\"v\", nil)", got, err)
	}
}
