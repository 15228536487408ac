// Package compose builds WhatsApp message payloads from a normalized contact
// and project. Output depends only on its inputs.
package compose

import (
	"strings"

	"wanotif/internal/domain"
	"wanotif/internal/util"
)

// Template parameter sources, in the vocabulary used by WA_TEMPLATE_PARAMS.
const (
	ParamName            = "name"
	ParamDescription     = "description"
	ParamDeliveryDate    = "delivery_date"
	ParamMaintenance     = "maintenance"
	ParamMaintenanceDate = "maintenance_date"
)

const (
	lineGreeting    = "Olá, {name}!"
	lineProject     = "Obra: {description}"
	lineDelivery    = "Entrega: {delivery}"
	lineMaintenance = "Manutenção: {item} em {date}"
	lineClosing     = "Mensagem automática via WhatsApp"
)

type Composer struct {
	TemplateName string
	LanguageCode string
	// TemplateParams lists the body placeholders of the approved template in
	// declaration order. The provider substitutes positionally.
	TemplateParams []string
}

func (c Composer) ComposeTemplate(contact domain.Contact, project domain.Project) domain.TemplateMessage {
	msg := domain.TemplateMessage{Name: c.TemplateName, LanguageCode: c.LanguageCode}
	if len(c.TemplateParams) == 0 {
		return msg
	}
	msg.BodyParameters = make([]string, 0, len(c.TemplateParams))
	for _, p := range c.TemplateParams {
		msg.BodyParameters = append(msg.BodyParameters, paramValue(p, contact, project))
	}
	return msg
}

func (c Composer) ComposeText(contact domain.Contact, project domain.Project) domain.TextMessage {
	lines := []string{util.RenderTemplate(lineGreeting, map[string]string{"name": contactName(contact)})}
	if d := strings.TrimSpace(project.Description); d != "" {
		lines = append(lines, util.RenderTemplate(lineProject, map[string]string{"description": d}))
	}
	lines = append(lines, util.RenderTemplate(lineDelivery, map[string]string{"delivery": project.Delivery.Display()}))
	if item := strings.TrimSpace(project.MaintenanceName); item != "" && project.Maintenance != nil && !project.Maintenance.IsZero() {
		lines = append(lines, util.RenderTemplate(lineMaintenance, map[string]string{
			"item": item,
			"date": project.Maintenance.Display(),
		}))
	}
	lines = append(lines, lineClosing)
	return domain.TextMessage{Body: strings.Join(lines, "\n")}
}

// ValidParam reports whether name is a known template parameter source.
func ValidParam(name string) bool {
	switch name {
	case ParamName, ParamDescription, ParamDeliveryDate, ParamMaintenance, ParamMaintenanceDate:
		return true
	}
	return false
}

func paramValue(name string, contact domain.Contact, project domain.Project) string {
	var v string
	switch name {
	case ParamName:
		v = contactName(contact)
	case ParamDescription:
		v = strings.TrimSpace(project.Description)
	case ParamDeliveryDate:
		v = project.Delivery.Display()
	case ParamMaintenance:
		v = strings.TrimSpace(project.MaintenanceName)
	case ParamMaintenanceDate:
		if project.Maintenance != nil {
			v = project.Maintenance.Display()
		}
	}
	// the provider rejects empty text parameters
	if v == "" {
		return domain.NoDate
	}
	return v
}

func contactName(c domain.Contact) string {
	if n := strings.TrimSpace(c.Name); n != "" {
		return n
	}
	return domain.DefaultContactName
}
