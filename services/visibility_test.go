package services

import (
	"testing"

	"github.com/heavensdreams/rental-api/models"
)

func visibilityDoc() *models.Document {
	return &models.Document{
		Users: []models.User{
			{ID: "admin", Email: "admin@host.test", Role: models.RoleAdmin},
			{ID: "cust1", Email: "anna@guests.test", Role: models.RoleCustomer},
			{ID: "cust2", Email: "ben@guests.test", Role: models.RoleCustomer},
		},
		Groups: []models.Group{
			{ID: "g1", Name: "Family"},
		},
		UserGroups: []models.UserGroup{
			{UserID: "cust1", GroupID: "g1"},
		},
		Apartments: []models.Apartment{
			{ID: "a1", Name: "Tagged by group", Groups: []string{"Family"}},
			{ID: "a2", Name: "Tagged by email", Groups: []string{"ben@guests.test"}},
			{ID: "a3", Name: "Untagged", Groups: []string{}},
		},
	}
}

func visibleIDs(doc *models.Document, userID string) map[string]bool {
	u := doc.UserByID(userID)
	ids := make(map[string]bool)
	for _, a := range VisibleApartments(doc, *u) {
		ids[a.ID] = true
	}
	return ids
}

func TestParseVisibilityTag(t *testing.T) {
	if tag := ParseVisibilityTag("Family"); tag.GroupName != "Family" || tag.DirectEmail != "" {
		t.Errorf("plain name must parse as group tag, got %+v", tag)
	}
	if tag := ParseVisibilityTag("anna@guests.test"); tag.DirectEmail != "anna@guests.test" || tag.GroupName != "" {
		t.Errorf("email must parse as direct assignment, got %+v", tag)
	}
}

func TestStaffSeeEverything(t *testing.T) {
	doc := visibilityDoc()
	ids := visibleIDs(doc, "admin")
	if len(ids) != 3 {
		t.Errorf("staff must see all apartments, got %v", ids)
	}
}

func TestCustomerSeesGroupTaggedApartments(t *testing.T) {
	doc := visibilityDoc()
	ids := visibleIDs(doc, "cust1")
	if !ids["a1"] {
		t.Error("group member must see the group-tagged apartment")
	}
	if ids["a2"] || ids["a3"] {
		t.Errorf("customer must not see apartments outside their tags, got %v", ids)
	}
}

func TestCustomerSeesDirectEmailApartments(t *testing.T) {
	doc := visibilityDoc()
	ids := visibleIDs(doc, "cust2")
	if !ids["a2"] {
		t.Error("direct email assignment must grant visibility without group membership")
	}
	if ids["a1"] || ids["a3"] {
		t.Errorf("customer must not see apartments outside their tags, got %v", ids)
	}
}

func TestVisibilityMatchingIsCaseInsensitive(t *testing.T) {
	doc := visibilityDoc()
	doc.Apartments[0].Groups = []string{"FAMILY"}
	doc.Apartments[1].Groups = []string{"Ben@Guests.Test"}

	if ids := visibleIDs(doc, "cust1"); !ids["a1"] {
		t.Error("group tag matching must ignore case")
	}
	if ids := visibleIDs(doc, "cust2"); !ids["a2"] {
		t.Error("email tag matching must ignore case")
	}
}
