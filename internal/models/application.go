package models

import (
	"encoding/json"
	"time"
)

// Application is the central record an officer submits on behalf of a citizen.
// Nullable columns are pointers so that they serialise as null.
type Application struct {
	ID                  int64           `db:"id" json:"id"`
	ApplicationNumber   string          `db:"application_number" json:"application_number"`
	OfficerID           *int64          `db:"officer_id" json:"officer_id"`
	ApplicationType     string          `db:"application_type" json:"application_type"`
	FullNames           string          `db:"full_names" json:"full_names"`
	DateOfBirth         *string         `db:"date_of_birth" json:"date_of_birth"`
	Gender              *string         `db:"gender" json:"gender"`
	FatherName          *string         `db:"father_name" json:"father_name"`
	MotherName          *string         `db:"mother_name" json:"mother_name"`
	MaritalStatus       *string         `db:"marital_status" json:"marital_status"`
	HusbandName         *string         `db:"husband_name" json:"husband_name"`
	HusbandIDNo         *string         `db:"husband_id_no" json:"husband_id_no"`
	DistrictOfBirth     *string         `db:"district_of_birth" json:"district_of_birth"`
	Tribe               *string         `db:"tribe" json:"tribe"`
	Clan                *string         `db:"clan" json:"clan"`
	Family              *string         `db:"family" json:"family"`
	HomeDistrict        *string         `db:"home_district" json:"home_district"`
	Division            *string         `db:"division" json:"division"`
	Constituency        *string         `db:"constituency" json:"constituency"`
	Location            *string         `db:"location" json:"location"`
	SubLocation         *string         `db:"sub_location" json:"sub_location"`
	VillageEstate       *string         `db:"village_estate" json:"village_estate"`
	HomeAddress         *string         `db:"home_address" json:"home_address"`
	Occupation          *string         `db:"occupation" json:"occupation"`
	SupportingDocuments json.RawMessage `db:"supporting_documents" json:"supporting_documents,omitempty"`
	Status              string          `db:"status" json:"status"`
	GeneratedIDNumber   *string         `db:"generated_id_number" json:"generated_id_number"`
	ExistingIDNumber    *string         `db:"existing_id_number" json:"existing_id_number"`
	RenewalReason       *string         `db:"renewal_reason" json:"renewal_reason"`
	OBNumber            *string         `db:"ob_number" json:"ob_number"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt           *time.Time      `db:"updated_at" json:"updated_at"`

	OfficerName *string    `db:"officer_name" json:"officer_name,omitempty"`
	Documents   []Document `db:"-" json:"documents,omitempty"`
}

// ApplicationListItem is the row shape used by review queues and officer listings.
type ApplicationListItem struct {
	ID                int64      `db:"id" json:"id"`
	ApplicationNumber string     `db:"application_number" json:"application_number"`
	FullNames         string     `db:"full_names" json:"full_names"`
	Status            string     `db:"status" json:"status"`
	ApplicationType   string     `db:"application_type" json:"application_type"`
	GeneratedIDNumber *string    `db:"generated_id_number" json:"generated_id_number"`
	OfficerName       *string    `db:"officer_name" json:"officer_name"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         *time.Time `db:"updated_at" json:"updated_at"`
}

// ApplicationTracking is what a citizen sees when tracking by application number.
type ApplicationTracking struct {
	ApplicationNumber string     `db:"application_number" json:"application_number"`
	FullNames         string     `db:"full_names" json:"full_names"`
	Status            string     `db:"status" json:"status"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         *time.Time `db:"updated_at" json:"updated_at"`
}

// Approval describes the outcome of approving an application.
type Approval struct {
	ApplicationID int64
	IDNumber      string
	// Allocated is false when the number was reused: renewals, or a repeated approval.
	Allocated bool
}
