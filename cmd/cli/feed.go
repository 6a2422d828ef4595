package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	feedType      string
	feedLimit     int
	feedCursor    string
	feedCommunity string
	feedHashtag   string
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Fetch ranked feeds",
}

var feedFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch one page of a ranked feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return fetchFeed()
	},
}

var feedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the selectable feeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listFeeds()
	},
}

func init() {
	feedFetchCmd.Flags().StringVar(&feedType, "type", "public", "Feed type: community, trending, hashtag, communitySpecific, or public")
	feedFetchCmd.Flags().IntVar(&feedLimit, "limit", 30, "Posts per page")
	feedFetchCmd.Flags().StringVar(&feedCursor, "cursor", "", "Pagination cursor from a previous page")
	feedFetchCmd.Flags().StringVar(&feedCommunity, "community", "", "Community ID for the community-specific feed")
	feedFetchCmd.Flags().StringVar(&feedHashtag, "hashtag", "", "Hashtag for the hashtag feed")

	feedCmd.AddCommand(feedFetchCmd)
	feedCmd.AddCommand(feedListCmd)
}

func fetchFeed() error {
	payload := map[string]interface{}{
		"feedType":    feedType,
		"limit":       feedLimit,
		"cursor":      feedCursor,
		"communityId": feedCommunity,
		"hashtag":     feedHashtag,
	}

	var result struct {
		Posts []struct {
			URI    string `json:"uri"`
			Author struct {
				Handle string `json:"handle"`
			} `json:"author"`
			Record struct {
				Text string `json:"text"`
			} `json:"record"`
			GltchScore float64 `json:"gltchScore"`
			IsAppUser  bool    `json:"isAppUser"`
		} `json:"posts"`
		Cursor    string `json:"cursor"`
		Algorithm string `json:"algorithm"`
	}

	raw, err := apiRequest("POST", "/api/v1/feeds/custom", payload, &result)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(raw))
		return nil
	}

	fmt.Printf("algorithm: %s (%d posts)\n", result.Algorithm, len(result.Posts))
	for i, post := range result.Posts {
		member := ""
		if post.IsAppUser {
			member = " [member]"
		}
		text := post.Record.Text
		if len(text) > 80 {
			text = text[:77] + "..."
		}
		fmt.Printf("%2d. %7.1f @%s%s\n    %s\n", i+1, post.GltchScore, post.Author.Handle, member, text)
	}
	if result.Cursor != "" {
		fmt.Printf("next cursor: %s\n", result.Cursor)
	}
	return nil
}

func listFeeds() error {
	var result struct {
		Feeds []struct {
			Name        string `json:"name"`
			DisplayName string `json:"display_name"`
			Description string `json:"description"`
		} `json:"feeds"`
	}

	raw, err := apiRequest("GET", "/api/v1/feeds", nil, &result)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(raw))
		return nil
	}

	for _, f := range result.Feeds {
		fmt.Printf("%-20s %-12s %s\n", f.Name, f.DisplayName, f.Description)
	}
	return nil
}
