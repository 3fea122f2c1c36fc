package main

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kestrelsec/passvault/pkg/db"
	"github.com/kestrelsec/passvault/pkg/keycrypt"
	"github.com/kestrelsec/passvault/pkg/model"
	gormstore "github.com/kestrelsec/passvault/pkg/vault/store/gorm"
)

// userCmd represents the user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage vault users",
	Long:  `Manage vault users.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'user' requires a subcommand (create)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

// userCreateCmd represents the user create command
var userCreateCmd = &cobra.Command{
	Use:   "create [user-id]",
	Short: "Create a user with a fresh key pair",
	Long: `Create a user with a fresh key pair.

The user's private key is output to STDOUT; it is the credential the user
presents to authenticate and is not stored. Group membership is granted
separately through the membership API by an existing group member.

Example:
  passvaultctl user create alice
  passvaultctl user create alice --name "Alice Cooper"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		userID := args[0]
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = userID
		}

		key, err := createUser(userID, name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
			os.Exit(1)
		}

		fmt.Fprintf(os.Stderr, "Created user '%s'\n", userID)
		fmt.Printf("User key for %s: %s\n", userID, base64.StdEncoding.EncodeToString(key.Serialize()))
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)
	userCreateCmd.Flags().StringP("name", "n", "", "Display name (default: the user id)")
}

func createUser(userID, name string) (*keycrypt.Key, error) {
	database, err := db.Connect(db.Config{})
	if err != nil {
		return nil, err
	}

	passwords := gormstore.NewPasswordsStore(database)

	key, err := keycrypt.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user key: %w", err)
	}

	if err := passwords.CreateUser(&model.User{
		UserID:    userID,
		UserName:  name,
		Enabled:   model.FlagTrue,
		PublicKey: key.Public().Serialize(),
	}); err != nil {
		return nil, err
	}

	return key, nil
}
