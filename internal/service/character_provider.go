package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"raid_checker_backend/internal/config"
	"raid_checker_backend/internal/util"
	"strings"
)

// CharacterProfile 外部接口返回的角色信息
type CharacterProfile struct {
	CharacterName      string `json:"CharacterName"`
	ServerName         string `json:"ServerName"`
	CharacterClassName string `json:"CharacterClassName"`
	ItemAvgLevel       string `json:"ItemAvgLevel"`
	GuildName          string `json:"GuildName"`
	CharacterLevel     int    `json:"CharacterLevel"`
	ExpeditionLevel    int    `json:"ExpeditionLevel"`
}

// CharacterProvider 从游戏接口获取角色数据
type CharacterProvider interface {
	FetchProfile(ctx context.Context, name string) (*CharacterProfile, error)
}

// LostArkClient 失落的方舟开放 API 客户端
type LostArkClient struct {
	config config.LostArkConfig
	client *http.Client
}

func NewLostArkClient(cfg config.LostArkConfig) *LostArkClient {
	return &LostArkClient{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *LostArkClient) FetchProfile(ctx context.Context, name string) (*CharacterProfile, error) {
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/armories/characters/" + url.PathEscape(name) + "/profiles"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "bearer "+c.config.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrProviderUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", util.ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	// 角色不存在时接口返回 "null"
	var profile *CharacterProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrProviderUnavailable, err)
	}
	if profile == nil || profile.CharacterName == "" {
		return nil, fmt.Errorf("%w: %s", util.ErrCharacterNotFound, name)
	}
	return profile, nil
}
