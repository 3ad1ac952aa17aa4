package models

// Document is the entire persisted state of the application: one flat JSON
// file read and written wholesale. Apartments embed their own bookings and
// photos; there is no referential integrity beyond what mutation code does.
type Document struct {
	Users      []User      `json:"users"`
	Groups     []Group     `json:"groups"`
	Apartments []Apartment `json:"apartments"`
	UserGroups []UserGroup `json:"user_groups"`
	Logs       []LogEntry  `json:"logs"`
}

func (d *Document) UserByID(id string) *User {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i]
		}
	}
	return nil
}

func (d *Document) ApartmentByID(id string) *Apartment {
	for i := range d.Apartments {
		if d.Apartments[i].ID == id {
			return &d.Apartments[i]
		}
	}
	return nil
}

func (d *Document) GroupByID(id string) *Group {
	for i := range d.Groups {
		if d.Groups[i].ID == id {
			return &d.Groups[i]
		}
	}
	return nil
}

// FindBooking locates a booking anywhere in the document and returns it with
// the apartment that currently holds it.
func (d *Document) FindBooking(id string) (*Apartment, *Booking) {
	for i := range d.Apartments {
		for j := range d.Apartments[i].Bookings {
			if d.Apartments[i].Bookings[j].ID == id {
				return &d.Apartments[i], &d.Apartments[i].Bookings[j]
			}
		}
	}
	return nil, nil
}
