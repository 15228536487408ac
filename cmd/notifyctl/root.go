package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"wanotif/internal/domain"
)

type projectFlags struct {
	name            string
	phone           string
	description     string
	deliveryDate    string
	maintenanceName string
	maintenanceDate string
}

func (f *projectFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "recipient name")
	cmd.Flags().StringVar(&f.phone, "phone", "", "recipient phone, any formatting")
	cmd.Flags().StringVar(&f.description, "description", "", "project description")
	cmd.Flags().StringVar(&f.deliveryDate, "delivery-date", "", "delivery date (YYYY-MM-DD or DD/MM/YYYY)")
	cmd.Flags().StringVar(&f.maintenanceName, "maintenance", "", "upcoming maintenance item")
	cmd.Flags().StringVar(&f.maintenanceDate, "maintenance-date", "", "maintenance date")
}

func (f *projectFlags) request() domain.NotificationRequest {
	return domain.NotificationRequest{
		Name:            f.name,
		Phone:           f.phone,
		Description:     f.description,
		DeliveryDate:    f.deliveryDate,
		MaintenanceName: f.maintenanceName,
		MaintenanceDate: f.maintenanceDate,
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "notifyctl",
		Short:         "Send or preview WhatsApp project notifications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(sendCmd(), previewCmd())
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
