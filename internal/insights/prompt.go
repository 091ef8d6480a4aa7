package insights

import "fmt"

const (
	systemMessage    = "You are a helpful assistant."
	openingMessage   = "Analyze the following product data and provide the output in JSON format."
	assistantMessage = "Sure! Please provide the data and any specific instructions."
)

const instructionsTemplate = `
You are an expert in Amazon e-commerce and have been provided with a dataset of product listings for the search term %q. Your task is to analyze this dataset to help a brand list a new product for the same search term on Amazon. The brand is seeking detailed insights to optimize their product listing. Please follow the instructions below to perform a thorough analysis:

1. **Recommended Final Product Title**:
   - Analyze the existing product titles in the dataset.
   - Identify common patterns, keywords, and structures.
   - Propose a compelling and SEO-friendly product title that stands out while incorporating relevant keywords.

2. **Recommended Final Product Description for "About Item" Section**:
   - Review the "AboutThisItem" sections of the top-performing products.
   - Identify key features, benefits, and unique selling points (USPs) that resonate with customers.
   - Craft a detailed and engaging product description that highlights the product's features, benefits, and USPs.

3. **Gaps Within the Current Products Listed for the Keyword**:
   - Analyze customer reviews (both positive and negative) to identify common complaints and unmet needs.
   - Compare the features, quality, and pricing of existing products.
   - Highlight gaps in the market that the new product can address.

4. **Recommended Product Messaging Positioning**:
   - Based on the identified gaps, suggest how the new product can be positioned in the market.
   - Recommend key messaging points that emphasize the product's unique features and benefits.
   - Suggest how to differentiate the product from competitors.

5. **Expected Opportunity Size Based on Purchase Trends**:
   - Analyze the "BoughtRecently" and "Rating" columns to understand purchase trends and customer satisfaction.
   - Estimate the potential market size and opportunity for the new product.
   - Provide insights into pricing strategies based on the competition. All prices are in INR.

**Output Format**:
The output should be in JSON format, structured as follows:

` + "```json" + `
{
  "recommended_title": "Recommended product title",
  "recommended_description": "Recommended product description",
  "identified_gaps": {
    "gap_1": "Description of the first gap",
    "gap_2": "Description of the second gap",
    "gap_3": "Description of the third gap"
  },
  "messaging_positioning": {
    "key_message_1": "First key messaging point",
    "key_message_2": "Second key messaging point",
    "key_message_3": "Third key messaging point"
  },
  "opportunity_size": {
    "market_size_estimate": "Estimated market size",
    "pricing_strategy": "Recommended pricing strategy"
  }
}
` + "```" + `
Do not give output in any other format. If you do not have the results in the above format, return a short text explanation on why insights could not be structured in the above specified json format
`

// Instructions returns the analysis prompt for term.
func Instructions(term string) string {
	return fmt.Sprintf(instructionsTemplate, term)
}
