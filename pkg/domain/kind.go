package domain

// DocumentKind identifies a category of output document.
type DocumentKind string

const (
	KindAffidavit   DocumentKind = "affidavit"
	KindLetter      DocumentKind = "letter"
	KindContract    DocumentKind = "contract"
	KindCertificate DocumentKind = "certificate"
	KindApplication DocumentKind = "application"
	KindCustom      DocumentKind = "custom"

	// KindGeneral is free chat. It has no required fields.
	KindGeneral DocumentKind = "general"
)

// IsGeneral reports whether k is the free chat kind.
func (k DocumentKind) IsGeneral() bool {
	return k == KindGeneral
}
