package social

import (
	"context"
	"net/http"
	"strconv"

	"collab-backend/config"
	"collab-backend/model"
)

// recentMediaLimit is how many posts feed the engagement estimate.
const recentMediaLimit = 12

type Instagram struct {
	oauthPlatform
}

func NewInstagram(cfg config.SocialPlatformConfig) *Instagram {
	return &Instagram{newOAuthPlatform(cfg,
		"https://api.instagram.com/oauth/authorize",
		"https://api.instagram.com/oauth/access_token",
		[]string{"instagram_business_basic"})}
}

func (i *Instagram) Name() model.Platform { return model.PlatformInstagram }

func (i *Instagram) FetchStats(ctx context.Context, client *http.Client) (*Stats, error) {
	var me struct {
		ID             string `json:"id"`
		Username       string `json:"username"`
		FollowersCount int    `json:"followers_count"`
	}
	if err := getJSON(ctx, client, i.apiBase+"/me?fields=id,username,followers_count", &me); err != nil {
		return nil, err
	}

	var media struct {
		Data []struct {
			LikeCount     int `json:"like_count"`
			CommentsCount int `json:"comments_count"`
		} `json:"data"`
	}
	if err := getJSON(ctx, client, i.apiBase+"/me/media?fields=like_count,comments_count&limit="+strconv.Itoa(recentMediaLimit), &media); err != nil {
		return nil, err
	}

	stats := &Stats{ExternalID: me.ID, Handle: me.Username, Followers: me.FollowersCount}
	if n := len(media.Data); n > 0 && me.FollowersCount > 0 {
		if n > recentMediaLimit {
			n = recentMediaLimit
		}
		total := 0
		for _, m := range media.Data[:n] {
			total += m.LikeCount + m.CommentsCount
		}
		stats.EngagementRate = float64(total) / float64(n) / float64(me.FollowersCount)
	}
	return stats, nil
}
