package models

import "time"

// Address is the structured location attached to an event.
type Address struct {
	ID                  int64  `json:"id"`
	Country             string `json:"country"`
	Province            string `json:"province"`
	City                string `json:"city"`
	Barangay            string `json:"barangay"`
	HouseBuildingNumber string `json:"house_building_number"`
	CountryCode         string `json:"country_code"`
	ProvinceCode        string `json:"province_code"`
	CityCode            string `json:"city_code"`
	BarangayCode        string `json:"barangay_code"`
}

// Event is an organization-authored content record. RSVPStatus carries the
// viewer's relationship to the event and is empty for anonymous reads.
type Event struct {
	ID               int64         `json:"id"`
	OrganizationID   int64         `json:"organization_id"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	EventDate        time.Time     `json:"event_date"`
	AddressID        int64         `json:"address_id"`
	Address          Address       `json:"address"`
	Image            Image         `json:"image"`
	CreatedDate      time.Time     `json:"created_date"`
	LastModifiedDate time.Time     `json:"last_modified_date"`
	Organization     *Organization `json:"organization,omitempty"`
	RSVPStatus       string        `json:"rsvp_status,omitempty"`
	LatestComments   []Comment     `json:"latest_comments"`
	TotalComments    int           `json:"total_comments"`
}

// EventsPage is one page of events plus the metadata needed to advance.
type EventsPage struct {
	Events     []Event    `json:"events"`
	Pagination Pagination `json:"pagination"`
}

// MemberCalendar is the month view for a member: only events they RSVPed to.
type MemberCalendar struct {
	RSVPedEvents []Event `json:"rsvped_events"`
}

// OrganizationCalendar is the month view for an organization.
type OrganizationCalendar struct {
	ActiveEvents []Event `json:"active_events"`
	PastEvents   []Event `json:"past_events"`
}
