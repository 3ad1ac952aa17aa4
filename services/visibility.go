package services

import (
	"strings"

	"github.com/heavensdreams/rental-api/models"
)

// VisibilityTag is one parsed entry of an apartment's groups array. The
// persisted format mixes group names and literal customer emails in a single
// string list; evaluation distinguishes the two here and nowhere else.
type VisibilityTag struct {
	GroupName   string
	DirectEmail string
}

func ParseVisibilityTag(raw string) VisibilityTag {
	tag := strings.TrimSpace(raw)
	if strings.Contains(tag, "@") {
		return VisibilityTag{DirectEmail: tag}
	}
	return VisibilityTag{GroupName: tag}
}

// VisibleApartments is the one visibility accessor every reader goes
// through. Staff see everything; a customer sees an apartment when one of
// its tags names a group they belong to or their own email.
func VisibleApartments(doc *models.Document, viewer models.User) []models.Apartment {
	if viewer.Role != models.RoleCustomer {
		return doc.Apartments
	}

	memberOf := make(map[string]bool)
	for _, ug := range doc.UserGroups {
		if ug.UserID != viewer.ID {
			continue
		}
		if g := doc.GroupByID(ug.GroupID); g != nil {
			memberOf[strings.ToLower(g.Name)] = true
		}
	}

	visible := make([]models.Apartment, 0)
	for _, a := range doc.Apartments {
		if apartmentVisible(a, viewer, memberOf) {
			visible = append(visible, a)
		}
	}
	return visible
}

func apartmentVisible(a models.Apartment, viewer models.User, memberOf map[string]bool) bool {
	for _, raw := range a.Groups {
		tag := ParseVisibilityTag(raw)
		if tag.DirectEmail != "" && strings.EqualFold(tag.DirectEmail, viewer.Email) {
			return true
		}
		if tag.GroupName != "" && memberOf[strings.ToLower(tag.GroupName)] {
			return true
		}
	}
	return false
}
