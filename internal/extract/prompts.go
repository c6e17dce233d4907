package extract

// pageExtractionPrompt instructs the model to return one strict JSON object
// per statement page. Continuation pages that show no header information
// come back with null header fields and transactions only.
const pageExtractionPrompt = "You are a financial statement parser for bank statement PDF pages.\n\n" +
	"Task:\n" +
	"- Parse ALL transactions visible on the attached page of a bank statement.\n" +
	"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
	"- Output a single JSON object.\n\n" +
	"The object must have these fields:\n" +
	"- \"account_name\": string or null\n" +
	"- \"account_number\": string or null\n" +
	"- \"currency\": string or null (e.g. \"NGN\", \"USD\")\n" +
	"- \"opening_balance\": number or null\n" +
	"- \"closing_balance\": number or null\n" +
	"- \"transactions\": array of objects, each with:\n" +
	"  - \"date\": string in ISO format \"YYYY-MM-DD\", or null\n" +
	"  - \"reference\": string or null\n" +
	"  - \"description\": string or null\n" +
	"  - \"type\": \"credit\" or \"debit\", or null\n" +
	"  - \"amount\": number or null (always the positive magnitude)\n" +
	"  - \"balance_after\": number or null\n\n" +
	"Rules:\n" +
	"- Amounts must be plain decimal numbers: no thousands separators, no currency symbols.\n" +
	"- If the page has separate \"money in\" / \"money out\" columns, use them to set \"type\" and keep \"amount\" positive.\n" +
	"- If a field cannot be determined from this page, set it to null.\n" +
	"- Continuation pages without header information get null header fields.\n" +
	"- Do NOT invent transactions; an empty page yields an empty transactions array.\n\n" +
	"Return ONLY valid raw JSON.\n" +
	"Do NOT wrap the response in code fences.\n" +
	"Do NOT use ```json or any Markdown.\n" +
	"Output must begin with \"{\" and end with \"}\".\n"
