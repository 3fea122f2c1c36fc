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

// bootstrapCmd represents the bootstrap command
var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Bootstrap the vault",
	Long:  `Bootstrap the vault with its initial principals.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'bootstrap' requires a subcommand (admin)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

// bootstrapAdminCmd represents the bootstrap admin command
var bootstrapAdminCmd = &cobra.Command{
	Use:   "admin [user-id]",
	Short: "Create the administrative group and the first admin user",
	Long: `Create the administrative group and the first admin user.

This command creates the administrative group with its fixed id, a first
admin user, and the membership that carries the group's private key wrapped
under the user's public key. Further admins are enrolled through the
membership API by an existing admin.

Two keys are output: the user's private key, which the admin presents to
authenticate, and the admin group's private key, which may be placed in the
server environment as PASSVAULT_ADMIN_KEY to enable break-glass decryption.
Neither is stored in plaintext; losing them means re-bootstrapping.

Example:
  passvaultctl bootstrap admin
  passvaultctl bootstrap admin alice`,
	Run: func(cmd *cobra.Command, args []string) {
		userID := "admin"
		if len(args) > 0 {
			userID = args[0]
		}

		userKey, groupKey, err := bootstrapAdmin(userID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
			os.Exit(1)
		}

		fmt.Fprintf(os.Stderr, "Created admin group '%s' with first member '%s'\n", model.AdminGroupID, userID)
		fmt.Printf("User key for %s: %s\n", userID, base64.StdEncoding.EncodeToString(userKey.Serialize()))
		fmt.Printf("Admin group key (PASSVAULT_ADMIN_KEY): %s\n", base64.StdEncoding.EncodeToString(groupKey.Serialize()))
	},
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
	bootstrapCmd.AddCommand(bootstrapAdminCmd)
}

func bootstrapAdmin(userID string) (userKey, groupKey *keycrypt.Key, err error) {
	database, err := db.Connect(db.Config{})
	if err != nil {
		return nil, nil, err
	}

	groups := gormstore.NewGroupsStore(database)
	memberships := gormstore.NewMembershipsStore(database)
	passwords := gormstore.NewPasswordsStore(database)

	if groups.GroupExists(model.AdminGroupID) {
		return nil, nil, fmt.Errorf("admin group already exists")
	}

	userKey, err = keycrypt.GenerateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate user key: %w", err)
	}
	groupKey, err = keycrypt.GenerateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate group key: %w", err)
	}

	akey, err := keycrypt.WrapKey(groupKey, userKey.Public())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to wrap group key: %w", err)
	}

	if err := passwords.CreateUser(&model.User{
		UserID:    userID,
		UserName:  userID,
		Enabled:   model.FlagTrue,
		PublicKey: userKey.Public().Serialize(),
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := groups.CreateGroup(&model.Group{
		GroupID:   model.AdminGroupID,
		GroupName: "Administrators",
		Enabled:   model.FlagTrue,
		PublicKey: groupKey.Public().Serialize(),
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to create group: %w", err)
	}

	if err := memberships.AddMembership(&model.Membership{
		UserID:  userID,
		GroupID: model.AdminGroupID,
		AKey:    akey,
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to create membership: %w", err)
	}

	return userKey, groupKey, nil
}
