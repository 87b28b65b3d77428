package catalog

import "github.com/aretw0/docket/pkg/domain"

var defaultGeneral = Descriptor{
	Kind:         domain.KindGeneral,
	Label:        "AI Assistant Response",
	Instructions: "You are a professional assistant. Provide helpful, well-structured responses. Be comprehensive and informative.",
}

// Defaults returns the built-in descriptors in menu order.
func Defaults() []Descriptor {
	return []Descriptor{
		{
			Kind:     domain.KindAffidavit,
			Label:    "Affidavit Document",
			Required: []string{domain.FactFullName, domain.FactAddress, domain.FactPurpose, domain.FactStatement},
			Prompts: map[string]string{
				domain.FactFullName:  "What is your full name?",
				domain.FactAddress:   "What is your complete address (with postal code)?",
				domain.FactPurpose:   "What is the purpose of this affidavit?",
				domain.FactStatement: "Please state the facts you want to declare in the affidavit.",
			},
			Instructions: "You are an expert legal document writer. Create a complete, professional affidavit with proper legal format. Use the provided information and create a professional document.",
		},
		{
			Kind:     domain.KindLetter,
			Label:    "Formal Letter",
			Required: []string{domain.FactSenderName, domain.FactSenderAddress, domain.FactAddressee, domain.FactSubject, domain.FactPurpose},
			Prompts: map[string]string{
				domain.FactSenderName:    "What is your name (the sender)?",
				domain.FactSenderAddress: "What is your address (the sender)?",
				domain.FactAddressee:     "Who is the letter addressed to?",
				domain.FactSubject:       "What is the subject of the letter?",
				domain.FactPurpose:       "What should the letter say or request?",
			},
			Instructions: "You are a professional business letter writer. Create a complete formal letter with proper Indian format. Use the provided information to create a professional letter.",
		},
		{
			Kind:     domain.KindContract,
			Label:    "Contract/Agreement",
			Required: []string{domain.FactFullName, domain.FactAddress, "other_party", domain.FactPurpose, "terms"},
			Prompts: map[string]string{
				domain.FactFullName: "What is your full name (first party)?",
				domain.FactAddress:  "What is your address (first party)?",
				"other_party":       "Who is the other party to the agreement (name and address)?",
				domain.FactPurpose:  "What is the agreement about?",
				"terms":             "What are the key terms (payment, duration, obligations)?",
			},
			Instructions: "You are a contract specialist. Create a comprehensive contract with clear terms. Use the provided information to create a professional contract.",
		},
		{
			Kind:     domain.KindCertificate,
			Label:    "Certificate",
			Required: []string{domain.FactIssuedTo, domain.FactPurpose, domain.FactIssuerName},
			Prompts: map[string]string{
				domain.FactIssuedTo:   "Who is the certificate issued to?",
				domain.FactPurpose:    "What is the certificate for?",
				domain.FactIssuerName: "Which person or organisation is issuing the certificate?",
			},
			Instructions: "You are creating official certificates. Generate a formal certificate with proper formatting using the provided information.",
		},
		{
			Kind:     domain.KindApplication,
			Label:    "Application Form",
			Required: []string{domain.FactApplicantName, domain.FactApplicantAddress, "addressed_to", domain.FactSubject, domain.FactPurpose},
			Prompts: map[string]string{
				domain.FactApplicantName:    "What is the applicant's full name?",
				domain.FactApplicantAddress: "What is the applicant's address?",
				"addressed_to":              "Who is the application addressed to (designation and office)?",
				domain.FactSubject:          "What is the subject of the application?",
				domain.FactPurpose:          "What are you requesting, and why?",
			},
			Instructions: "You are an expert in Indian government applications. Create authentic Indian applications with proper format (To, From, Subject structure). Use respectful language and proper Indian format.",
		},
		{
			Kind:     domain.KindCustom,
			Label:    "Custom Document",
			Required: []string{domain.FactPurpose},
			Prompts: map[string]string{
				domain.FactPurpose: "Describe the document you need.",
			},
			Instructions: "You are a professional document writer. Create a complete, well-formatted document that matches the request. Use the provided information.",
		},
	}
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(Defaults())
	if err != nil {
		panic(err)
	}
	return c
}
