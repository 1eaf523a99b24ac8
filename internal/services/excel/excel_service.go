package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/arcwardens/outreach-backend/internal/models"
)

// Service builds spreadsheet exports of campaign data.
type Service struct{}

// NewExcelService creates a new Excel service instance
func NewExcelService() *Service {
	return &Service{}
}

var contactHeaders = []string{"Name", "Email", "Title", "Company", "City", "State", "Country", "LinkedIn"}

// ExportContacts renders the campaign's resolved contact list as an
// xlsx workbook and returns it with a download filename.
func (s *Service) ExportContacts(campaign *models.Campaign) (*excelize.File, string, error) {
	contacts, err := campaign.ContactList()
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode contacts: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Contacts"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, title := range contactHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, "", err
		}
	}

	for row, contact := range contacts {
		values := []string{
			contact.Name,
			contact.Email,
			contact.Title,
			contact.OrganizationName,
			contact.City,
			contact.State,
			contact.Country,
			contact.LinkedinURL,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, "", err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, "", err
			}
		}
	}

	// Widen the name/email/company columns so exports open readable.
	if err := f.SetColWidth(sheet, "A", "D", 28); err != nil {
		return nil, "", err
	}

	filename := "contacts_" + sanitizeFilename(campaign.ID) + ".xlsx"
	return f, filename, nil
}

func sanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "campaign"
	}
	return b.String()
}
