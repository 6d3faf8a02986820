package llm

import "strings"

// BuildBillPrompt wraps raw electricity-bill text in the fixed extraction
// instruction. The model must answer with a single JSON object matching
// the bill-fields schema, using null for anything it cannot find.
func BuildBillPrompt(billText string) string {
	var b strings.Builder
	b.WriteString("You are an electricity bill parser. Extract the fields below from the bill text ")
	b.WriteString("and return ONLY a JSON object. No prose, no markdown fences. ")
	b.WriteString("Your entire reply must start with { and end with }.\n\n")
	b.WriteString("Fields:\n")
	b.WriteString(`  "unitsKWh": number or null, monthly consumption in kWh` + "\n")
	b.WriteString(`  "totalCost": number or null, total bill amount in PKR` + "\n")
	b.WriteString(`  "costPerUnit": number or null, effective PKR per kWh if printed` + "\n")
	b.WriteString(`  "location": string or null, city or region name` + "\n")
	b.WriteString(`  "billingDate": string or null, billing date as printed` + "\n")
	b.WriteString(`  "tariff": string or null, tariff category code if printed` + "\n")
	b.WriteString(`  "peakDemandKw": number or null, recorded peak demand` + "\n\n")
	b.WriteString("Use null for any field not present. Never invent values.\n\n")
	b.WriteString("Bill text:\n")
	b.WriteString(billText)
	return b.String()
}
