package models

import "time"

// KycStatus defines the identity verification lifecycle.
type KycStatus string

const (
	KYC_NOT_STARTED KycStatus = "NOT_STARTED"
	KYC_SUBMITTED   KycStatus = "SUBMITTED"
	KYC_APPROVED    KycStatus = "APPROVED"
	KYC_REJECTED    KycStatus = "REJECTED"
)

// KycDocumentType is the identity document supplied with a submission.
type KycDocumentType string

const (
	AADHAAR         KycDocumentType = "AADHAAR"
	PAN             KycDocumentType = "PAN"
	VOTER_ID        KycDocumentType = "VOTER_ID"
	DRIVING_LICENSE KycDocumentType = "DRIVING_LICENSE"
)

// Valid reports whether d is a supported document type.
func (d KycDocumentType) Valid() bool {
	switch d {
	case AADHAAR, PAN, VOTER_ID, DRIVING_LICENSE:
		return true
	}
	return false
}

// KycRecord is the user's verification state and submitted document metadata.
type KycRecord struct {
	Status             KycStatus       `json:"status"`
	FullName           string          `json:"full_name,omitempty"`
	DocumentType       KycDocumentType `json:"document_type,omitempty"`
	DocumentNumber     string          `json:"document_number,omitempty"`
	DocumentImageFront string          `json:"document_image_front,omitempty"`
	DocumentImageBack  string          `json:"document_image_back,omitempty"`
	SubmittedAt        *time.Time      `json:"submitted_at,omitempty"`
	ReviewedAt         *time.Time      `json:"reviewed_at,omitempty"`
	RejectionReason    string          `json:"rejection_reason,omitempty"`
}

// KycSubmission is the document data a user sends for review.
type KycSubmission struct {
	FullName           string
	DocumentType       KycDocumentType
	DocumentNumber     string
	DocumentImageFront string
	DocumentImageBack  string
}
