package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/morpheus-mall/mall-backend/database"
	"github.com/morpheus-mall/mall-backend/internal/event"
	"github.com/morpheus-mall/mall-backend/internal/notification"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a designer/boutique registration for an event",
	Long: `Runs the registration check the API uses and prints the result as JSON.
At least one of --designer and --boutique is required.`,
	Example: "  morpheus validate --event 12 --designer 4 --boutique 9",
	RunE:    runValidate,
}

func init() {
	validateCmd.Flags().Uint("event", 0, "event id")
	validateCmd.Flags().Uint("designer", 0, "designer id")
	validateCmd.Flags().Uint("boutique", 0, "boutique id")
}

// optionalUint returns nil for a flag the user did not set.
func optionalUint(cmd *cobra.Command, name string) (*uint, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, err := cmd.Flags().GetUint(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func runValidate(cmd *cobra.Command, _ []string) error {
	eventID, err := cmd.Flags().GetUint("event")
	if err != nil {
		return err
	}
	designerID, err := optionalUint(cmd, "designer")
	if err != nil {
		return err
	}
	boutiqueID, err := optionalUint(cmd, "boutique")
	if err != nil {
		return err
	}

	db, err := database.Connect(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	svc := event.NewService(event.NewRepository(db), nil, notification.NopPublisher{}, nil)

	res, err := svc.Validate(cmd.Context(), eventID, designerID, boutiqueID)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	if !res.IsValid {
		return fmt.Errorf("registration invalid: %s", res.Reason)
	}
	return nil
}
