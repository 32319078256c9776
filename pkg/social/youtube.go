package social

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"collab-backend/config"
	"collab-backend/model"
)

type YouTube struct {
	oauthPlatform
}

func NewYouTube(cfg config.SocialPlatformConfig) *YouTube {
	return &YouTube{newOAuthPlatform(cfg,
		"https://accounts.google.com/o/oauth2/v2/auth",
		"https://oauth2.googleapis.com/token",
		[]string{"https://www.googleapis.com/auth/youtube.readonly"})}
}

func (y *YouTube) Name() model.Platform { return model.PlatformYouTube }

// FetchStats reads the authenticated channel and its latest uploads.
// Engagement is measured like Instagram's: likes plus comments per recent
// video over subscribers.
func (y *YouTube) FetchStats(ctx context.Context, client *http.Client) (*Stats, error) {
	var channels struct {
		Items []struct {
			ID      string `json:"id"`
			Snippet struct {
				Title     string `json:"title"`
				CustomURL string `json:"customUrl"`
			} `json:"snippet"`
			ContentDetails struct {
				RelatedPlaylists struct {
					Uploads string `json:"uploads"`
				} `json:"relatedPlaylists"`
			} `json:"contentDetails"`
			Statistics struct {
				SubscriberCount string `json:"subscriberCount"`
			} `json:"statistics"`
		} `json:"items"`
	}
	if err := getJSON(ctx, client, y.apiBase+"/channels?part=statistics,snippet,contentDetails&mine=true", &channels); err != nil {
		return nil, err
	}
	if len(channels.Items) == 0 {
		return nil, errors.New("youtube: no channel for this account")
	}

	ch := channels.Items[0]
	subs, _ := strconv.Atoi(ch.Statistics.SubscriberCount)
	handle := ch.Snippet.CustomURL
	if handle == "" {
		handle = ch.Snippet.Title
	}
	stats := &Stats{ExternalID: ch.ID, Handle: handle, Followers: subs}

	uploads := ch.ContentDetails.RelatedPlaylists.Uploads
	if subs == 0 || uploads == "" {
		return stats, nil
	}
	ids, err := y.recentVideoIDs(ctx, client, uploads)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return stats, nil
	}

	var videos struct {
		Items []struct {
			Statistics struct {
				LikeCount    string `json:"likeCount"`
				CommentCount string `json:"commentCount"`
			} `json:"statistics"`
		} `json:"items"`
	}
	q := url.Values{"part": {"statistics"}, "id": {strings.Join(ids, ",")}}
	if err := getJSON(ctx, client, y.apiBase+"/videos?"+q.Encode(), &videos); err != nil {
		return nil, err
	}
	if len(videos.Items) == 0 {
		return stats, nil
	}
	total := 0
	for _, v := range videos.Items {
		// Hidden like or comment counts are omitted by the API and count as zero.
		likes, _ := strconv.Atoi(v.Statistics.LikeCount)
		comments, _ := strconv.Atoi(v.Statistics.CommentCount)
		total += likes + comments
	}
	stats.EngagementRate = float64(total) / float64(len(videos.Items)) / float64(subs)
	return stats, nil
}

func (y *YouTube) recentVideoIDs(ctx context.Context, client *http.Client, playlistID string) ([]string, error) {
	var items struct {
		Items []struct {
			ContentDetails struct {
				VideoID string `json:"videoId"`
			} `json:"contentDetails"`
		} `json:"items"`
	}
	q := url.Values{
		"part":       {"contentDetails"},
		"playlistId": {playlistID},
		"maxResults": {strconv.Itoa(recentMediaLimit)},
	}
	if err := getJSON(ctx, client, y.apiBase+"/playlistItems?"+q.Encode(), &items); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items.Items))
	for _, it := range items.Items {
		if id := it.ContentDetails.VideoID; id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
