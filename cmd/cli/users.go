package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	userDID    string
	userHandle string
	userName   string
	userAvatar string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage GLTCH members",
}

var usersRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a Bluesky account as a GLTCH member",
	RunE: func(cmd *cobra.Command, args []string) error {
		return registerUser()
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List verified GLTCH members",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listUsers()
	},
}

func init() {
	usersRegisterCmd.Flags().StringVar(&userDID, "did", "", "Bluesky DID (required)")
	usersRegisterCmd.Flags().StringVar(&userHandle, "handle", "", "Bluesky handle (required)")
	usersRegisterCmd.Flags().StringVar(&userName, "name", "", "Display name")
	usersRegisterCmd.Flags().StringVar(&userAvatar, "avatar", "", "Avatar URL")
	usersRegisterCmd.MarkFlagRequired("did")
	usersRegisterCmd.MarkFlagRequired("handle")

	usersCmd.AddCommand(usersRegisterCmd)
	usersCmd.AddCommand(usersListCmd)
}

func registerUser() error {
	payload := map[string]interface{}{
		"blueskyDid":    userDID,
		"blueskyHandle": userHandle,
		"displayName":   userName,
		"avatarUrl":     userAvatar,
	}

	raw, err := apiRequest("POST", "/api/v1/users/register", payload, nil)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(raw))
	} else {
		fmt.Printf("registered %s\n", userHandle)
	}
	return nil
}

func listUsers() error {
	var result struct {
		Users []struct {
			BlueskyHandle string `json:"bluesky_handle"`
			DisplayName   string `json:"display_name"`
			BlueskyDID    string `json:"bluesky_did"`
		} `json:"users"`
	}

	raw, err := apiRequest("GET", "/api/v1/users", nil, &result)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(raw))
		return nil
	}

	for _, u := range result.Users {
		fmt.Printf("%-30s %-20s %s\n", u.BlueskyHandle, u.DisplayName, u.BlueskyDID)
	}
	return nil
}
