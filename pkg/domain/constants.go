package domain

// Fact keys shared by extraction, the catalog and the renderers.
const (
	FactFullName         = "full_name"
	FactApplicantName    = "applicant_name"
	FactSenderName       = "sender_name"
	FactRecipientName    = "recipient_name"
	FactAddress          = "address"
	FactApplicantAddress = "applicant_address"
	FactSenderAddress    = "sender_address"
	FactPurpose          = "purpose"
	FactSubject          = "subject"
	FactStatement        = "facts"

	// Parties other than the user. They are never filled by name extraction.
	FactAddressee  = "addressee"
	FactIssuedTo   = "issued_to"
	FactIssuerName = "issuer_name"
)

// NameAliases lists every key a detected name is written to.
// Downstream consumers may look at any of them.
var NameAliases = []string{FactFullName, FactApplicantName, FactSenderName, FactRecipientName}

// AddressAliases lists every key a detected address is written to.
var AddressAliases = []string{FactAddress, FactApplicantAddress, FactSenderAddress}
