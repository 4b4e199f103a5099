package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"raid_checker_backend/internal/config"
	"raid_checker_backend/internal/model"
	"raid_checker_backend/internal/util"
	"testing"
	"time"
)

type stubProvider map[string]CharacterProfile

func (p stubProvider) FetchProfile(_ context.Context, name string) (*CharacterProfile, error) {
	profile, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", util.ErrCharacterNotFound, name)
	}
	return &profile, nil
}

func TestImportAndSyncCharacter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	provider := stubProvider{}
	svc := NewCharacterService(f.characters, f.accounts, provider)
	acct := f.newAccount()

	for i := 0; i < 11; i++ {
		name := fmt.Sprintf("alt%02d", i)
		provider[name] = CharacterProfile{CharacterName: name, CharacterClassName: "버서커", ItemAvgLevel: "1,640.83"}
		c, err := svc.ImportCharacter(ctx, acct, name)
		if err != nil {
			t.Fatalf("ImportCharacter(%s) error = %v", name, err)
		}
		want := i + 1
		if want > 10 {
			want = 10
		}
		if c.GoldPriority != want || c.ItemLevel != 1640.83 {
			t.Errorf("%s: priority %d level %v, want %d 1640.83", name, c.GoldPriority, c.ItemLevel, want)
		}
	}
	if _, err := svc.ImportCharacter(ctx, acct, "alt00"); !errors.Is(err, util.ErrCharacterExists) {
		t.Errorf("duplicate import error = %v, want ErrCharacterExists", err)
	}

	provider["alt00"] = CharacterProfile{CharacterName: "alt00", CharacterClassName: "버서커", ItemAvgLevel: "1,700.00", GuildName: "길드"}
	list, _ := svc.ListByAccount(acct)
	synced, err := svc.SyncCharacter(ctx, list[0].ID)
	if err != nil {
		t.Fatalf("SyncCharacter() error = %v", err)
	}
	if synced.ItemLevel != 1700 || synced.GuildName != "길드" {
		t.Errorf("synced = %+v", synced)
	}

	delete(provider, "alt05")
	n, err := svc.SyncAccountCharacters(ctx, acct)
	if err != nil || n != 10 {
		t.Errorf("SyncAccountCharacters() = %d, %v; want 10 with one failure skipped", n, err)
	}
}

func TestGoldPriorityOwnership(t *testing.T) {
	f := newFixture(t)
	svc := NewCharacterService(f.characters, f.accounts, stubProvider{})
	owner := f.newAccount()
	other := f.newAccount()
	c := f.addCharacter(owner, "mine", "바드", 1650, 3)

	tests := []struct {
		name     string
		priority int
		claims   *util.Claims
		wantErr  error
	}{
		{"owner", 7, &util.Claims{AccountID: owner, Role: model.Member}, nil},
		{"master", 2, &util.Claims{AccountID: other, Role: model.Master}, nil},
		{"stranger", 4, &util.Claims{AccountID: other, Role: model.Member}, util.ErrPermissionDenied},
		{"out of range", 11, &util.Claims{AccountID: owner, Role: model.Member}, util.ErrInvalidGoldPriority},
		{"zero", 0, &util.Claims{AccountID: owner, Role: model.Member}, util.ErrInvalidGoldPriority},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.UpdateGoldPriority(c.ID, tt.priority, tt.claims)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("UpdateGoldPriority() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got.GoldPriority != tt.priority {
				t.Errorf("priority = %d, want %d", got.GoldPriority, tt.priority)
			}
		})
	}
}

func TestSearchFuzzyMatchesNames(t *testing.T) {
	f := newFixture(t)
	svc := NewCharacterService(f.characters, f.accounts, stubProvider{})
	acct := f.newAccount()
	for _, name := range []string{"HolyKnight", "Holly", "Berserker", "Bard"} {
		f.addCharacter(acct, name, "바드", 1650, 1)
	}

	got, err := svc.Search("hol")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Search(hol) = %d results, want 2", len(got))
	}
	for _, c := range got {
		if c.Name != "HolyKnight" && c.Name != "Holly" {
			t.Errorf("unexpected match %s", c.Name)
		}
	}
}

func TestLostArkClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "bearer key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/armories/characters/바드장인/profiles":
			w.Write([]byte(`{"CharacterName":"바드장인","ServerName":"루페온","CharacterClassName":"바드","ItemAvgLevel":"1,712.50"}`))
		case "/armories/characters/busy/profiles":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.Write([]byte("null"))
		}
	}))
	defer srv.Close()

	client := NewLostArkClient(config.LostArkConfig{BaseURL: srv.URL + "/", APIKey: "key", Timeout: 2 * time.Second})
	ctx := context.Background()

	profile, err := client.FetchProfile(ctx, "바드장인")
	if err != nil {
		t.Fatalf("FetchProfile() error = %v", err)
	}
	if profile.CharacterClassName != "바드" || profile.ItemAvgLevel != "1,712.50" {
		t.Errorf("profile = %+v", profile)
	}
	if _, err := client.FetchProfile(ctx, "nobody"); !errors.Is(err, util.ErrCharacterNotFound) {
		t.Errorf("unknown name error = %v, want ErrCharacterNotFound", err)
	}
	if _, err := client.FetchProfile(ctx, "busy"); !errors.Is(err, util.ErrProviderUnavailable) {
		t.Errorf("503 error = %v, want ErrProviderUnavailable", err)
	}
}
