package main

import (
	"github.com/spf13/cobra"

	"wanotif/internal/app"
	"wanotif/internal/config"
	"wanotif/internal/dispatch"
	"wanotif/internal/domain"
	"wanotif/internal/util"
)

type preview struct {
	Phone           domain.CanonicalPhone  `json:"phone"`
	PhoneCanonical  bool                   `json:"phoneCanonical"`
	DeliveryDate    string                 `json:"deliveryDate"`
	MaintenanceDate string                 `json:"maintenanceDate,omitempty"`
	Template        domain.TemplateMessage `json:"template"`
	Text            string                 `json:"text"`
}

// preview: normalize and compose without touching the network.
func previewCmd() *cobra.Command {
	var f projectFlags
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show normalized input and composed messages offline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWhatsApp()
			if err != nil {
				return err
			}
			composer, err := app.NewComposer(cfg)
			if err != nil {
				return err
			}

			policy := dispatch.Policy{
				RequireDescription:  cfg.RequireDescription,
				RequireDeliveryDate: cfg.RequireDeliveryDate,
			}
			contact, project, verr := policy.Normalize(f.request())
			if verr != nil {
				return verr
			}
			phone := contact.Phone

			p := preview{
				Phone:          phone,
				PhoneCanonical: util.IsCanonical(phone),
				DeliveryDate:   project.Delivery.Display(),
				Template:       composer.ComposeTemplate(contact, project),
				Text:           composer.ComposeText(contact, project).Body,
			}
			if project.Maintenance != nil {
				p.MaintenanceDate = project.Maintenance.Display()
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
	f.bind(cmd)
	return cmd
}
