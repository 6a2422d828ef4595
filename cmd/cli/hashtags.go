package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	hashtagCommunity string
	hashtagValue     string
	hashtagBoost     float64
)

var hashtagsCmd = &cobra.Command{
	Use:   "hashtags",
	Short: "Inspect and edit community hashtag bindings",
}

var hashtagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a community's hashtags",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listHashtags()
	},
}

var hashtagsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Bind a hashtag to a community (requires auth token)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return addHashtag()
	},
}

func init() {
	hashtagsListCmd.Flags().StringVar(&hashtagCommunity, "community", "", "Community ID (required)")
	hashtagsListCmd.MarkFlagRequired("community")

	hashtagsAddCmd.Flags().StringVar(&hashtagCommunity, "community", "", "Community ID (required)")
	hashtagsAddCmd.Flags().StringVar(&hashtagValue, "hashtag", "", "Hashtag to bind (required)")
	hashtagsAddCmd.Flags().Float64Var(&hashtagBoost, "boost", 1.0, "Boost factor")
	hashtagsAddCmd.MarkFlagRequired("community")
	hashtagsAddCmd.MarkFlagRequired("hashtag")

	hashtagsCmd.AddCommand(hashtagsListCmd)
	hashtagsCmd.AddCommand(hashtagsAddCmd)
}

func listHashtags() error {
	var result struct {
		Hashtags []struct {
			Hashtag     string  `json:"hashtag"`
			BoostFactor float64 `json:"boost_factor"`
		} `json:"hashtags"`
	}

	raw, err := apiRequest("GET", "/api/v1/communities/"+hashtagCommunity+"/hashtags", nil, &result)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(raw))
		return nil
	}

	for _, tag := range result.Hashtags {
		fmt.Printf("#%-20s boost %.1f\n", tag.Hashtag, tag.BoostFactor)
	}
	return nil
}

func addHashtag() error {
	payload := map[string]interface{}{
		"hashtag":     hashtagValue,
		"boostFactor": hashtagBoost,
	}

	raw, err := apiRequest("POST", "/api/v1/communities/"+hashtagCommunity+"/hashtags", payload, nil)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(raw))
	} else {
		fmt.Printf("bound #%s to %s\n", hashtagValue, hashtagCommunity)
	}
	return nil
}
