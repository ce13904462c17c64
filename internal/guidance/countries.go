package guidance

// countryContexts holds the regulatory framing added to prompts for the
// countries the assessment covers.
var countryContexts = map[string]string{
	"South Africa":   "Your advice should be particularly mindful of South Africa's key regulations, including the Protection of Personal Information Act (POPIA), the Protected Disclosures Act, and the Financial Intelligence Centre Act (FIC Act), which emphasize data privacy, whistleblower protection, and anti-money laundering controls.",
	"Lesotho":        "Your advice should be mindful of Lesotho's regulatory environment, particularly the Data Protection Act, 2013 regarding data privacy, and the under-regulated nature of the NGO sector, which places a high emphasis on strong internal governance and accountability beyond donor requirements.",
	"United Kingdom": "Your advice should be mindful of the United Kingdom's regulatory environment, particularly UK GDPR for data protection and, for charities, the stringent accountability and reporting standards set by the Charity Commission for England and Wales.",
	"New Zealand":    "Your advice should be mindful of New Zealand's regulatory environment, which emphasizes creating a strong internal \"speak up\" culture under the Protected Disclosures Act 2022 and adhering to the data privacy principles of the Privacy Act 2020.",
	"United States":  "Your advice should be mindful of the United States' complex regulatory patchwork, which includes sector-specific federal laws and numerous state-level comprehensive privacy laws (like CCPA). Emphasize the importance of a unified compliance strategy to manage varying requirements for data security, breach notification, and consumer rights across states.",
	"Canada":         "Your advice should be mindful of Canada's privacy laws, including the federal PIPEDA and stricter provincial acts like Quebec's Law 25. Key considerations include consent management under CASL, mandatory breach reporting, and robust whistleblower protections as outlined in the Competition Act.",
	"Australia":      "Your advice should be mindful of Australia's regulatory framework, particularly the Privacy Act and its Australian Privacy Principles (APPs). Key areas of focus include mandatory data breach notification to the OAIC, and ensuring the corporate whistleblower policy is effective and compliant with the Corporations Act.",
	"Zimbabwe":       "Your advice should be mindful of Zimbabwe's Data Protection Act, 2021 (DPA). Key considerations include mandatory registration with the regulator (POTRAZ), strict requirements for data breach notifications, processes for handling data subject rights (access, erasure), and the need for a Data Protection Officer (DPO) for certain entities.",
	"Angola":         "Your advice should be mindful of Angola's Law no. 22/11 on the Protection of Personal Data. Key considerations include mandatory registration with the Data Protection Agency (APD), strict rules for cross-border data transfers, and obtaining explicit consent for data processing.",
	"Botswana":       "Your advice should be mindful of Botswana's Data Protection Act, 2018. Key considerations include mandatory registration with the Information and Data Protection Commission, the appointment of a Data Protection Officer (DPO), and adhering to defined procedures for data breach notifications.",
	"Mauritius":      "Your advice should be mindful of the Mauritius Data Protection Act 2017, which is closely aligned with GDPR. Emphasize the need for a Data Protection Officer (DPO), conducting Data Protection Impact Assessments (DPIAs) for high-risk activities, and strict 72-hour data breach notification rules.",
	"Mozambique":     "Your advice should be mindful of Mozambique's data protection landscape. While a comprehensive single law is emerging, focus on core principles from its Constitution and Electronic Transactions Law, such as the necessity of explicit consent for data processing and implementing robust security measures.",
	"Tanzania":       "Your advice should be mindful of Tanzania's Personal Data Protection Act, 2022. Key considerations include the mandatory registration of data controllers and processors with the Personal Data Protection Commission and adherence to rules on cross-border data transfers.",
	"Zambia":         "Your advice should be mindful of Zambia's Data Protection Act No. 3 of 2021. Key considerations include the mandatory registration of all controllers and processors with the Data Protection Commissioner's office and the appointment of a Data Protection Officer.",
}

const defaultCountryContext = "Your advice should emphasize general best practices in governance, as the specific country context is not provided."

// CountryContext returns the regulatory framing for country.
func CountryContext(country string) string {
	if c, ok := countryContexts[country]; ok {
		return c
	}
	return defaultCountryContext
}
