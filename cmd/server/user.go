package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	userName     string
	userEmail    string
	userPassword string
	userFarmID   uint
	userRole     string
	farmLocation string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage login users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a login user, optionally granting a farm role",
	Example: `  farmhand user create -u amaka -p 's3cret-pass'
  farmhand user create -u tunde -p 's3cret-pass' --farm 1 --role supervisor`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUserCreate()
	},
}

var userFarmCmd = &cobra.Command{
	Use:   "create-farm NAME",
	Short: "Create a farm owned by an existing user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFarmCreate(args[0])
	},
}

func init() {
	userCreateCmd.Flags().StringVarP(&userName, "username", "u", "", "username (required)")
	userCreateCmd.Flags().StringVarP(&userPassword, "password", "p", "", "password, at least 8 characters (required)")
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "email address")
	userCreateCmd.Flags().UintVar(&userFarmID, "farm", 0, "farm ID to grant a role on")
	userCreateCmd.Flags().StringVar(&userRole, "role", "supervisor", "farm role: owner, manager or supervisor")
	userCreateCmd.MarkFlagRequired("username")
	userCreateCmd.MarkFlagRequired("password")

	userFarmCmd.Flags().StringVarP(&userName, "owner", "o", "", "owner username (required)")
	userFarmCmd.Flags().StringVar(&farmLocation, "location", "", "farm location")
	userFarmCmd.MarkFlagRequired("owner")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userFarmCmd)
}

func runUserCreate() error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	user, err := a.services.Users.CreateUser(userName, userEmail, userPassword)
	if err != nil {
		return err
	}
	fmt.Printf("created user %s (id %d)\n", user.Username, user.ID)

	if userFarmID == 0 {
		return nil
	}
	if _, err := a.services.Farms.SetMember(userFarmID, user.Username, userRole); err != nil {
		return err
	}
	fmt.Printf("granted %s on farm %d\n", userRole, userFarmID)
	return nil
}

func runFarmCreate(name string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	farm, err := a.services.Farms.CreateFarm(name, farmLocation, userName)
	if err != nil {
		return err
	}
	fmt.Printf("created farm %q (id %d) owned by %s\n", farm.Name, farm.ID, userName)
	return nil
}
