package gemini

import "strings"

// analysisPromptTemplate instructs the model to analyze the company behind
// {url} and answer with one JSON object in the exact shape the extractor
// expects. The model is told to declare failure through an "error" field
// rather than inventing data.
const analysisPromptTemplate = `You are an expert business analyst and content strategist. Analyze the company website at {url} and extract comprehensive company context INCLUDING a detailed writing persona.

IMPORTANT INSTRUCTIONS:
1. Use Google Search to find real information about this company
2. Do NOT make up or hallucinate data - only use information you actually retrieve
3. If you cannot find information about the company, return an error field in the JSON

Analyze all retrieved information to provide:

1. Company basics (name, website, industry)
2. Products/services offered
3. Target audience and ideal customers
4. Brand voice and tone
5. Key value propositions
6. Customer pain points they address
7. Common use cases
8. Content themes they focus on
9. Main competitors (based on industry and offerings)
10. A detailed voice_persona for content writing

The voice_persona defines HOW to write content that resonates with the target audience (ICP): who they are, what they value, how they consume content, what tone they respond to, and what makes them trust content. It must help writers avoid robotic patterns like starting every section with "What is X?", leaning on "According to experts...", or over-hedging with "may" and "might".

Return ONLY valid JSON in exactly this format:
{
  "company_name": "Official company name",
  "company_url": "Normalized company website URL",
  "industry": "Primary industry category",
  "description": "Clear 2-3 sentence company description",
  "products": ["Product 1", "Product 2"],
  "target_audience": "Ideal customer profile description",
  "competitors": ["Competitor 1", "Competitor 2"],
  "tone": "Brand voice description (e.g., professional, friendly, authoritative)",
  "pain_points": ["Pain point 1", "Pain point 2"],
  "value_propositions": ["Value prop 1", "Value prop 2"],
  "use_cases": ["Use case 1", "Use case 2"],
  "content_themes": ["Theme 1", "Theme 2"],
  "voice_persona": {
    "icp_profile": "Brief description of the ICP this voice is tailored for.",
    "voice_style": "2-3 sentence description of the writing voice that resonates with this ICP.",
    "language_style": {
      "formality": "Level of formality (casual/professional/formal)",
      "complexity": "Vocabulary complexity (simple/moderate/technical/expert)",
      "sentence_length": "Preferred sentence structure (short and punchy / mixed / detailed)",
      "perspective": "How to address reader (peer-to-peer / expert-to-learner / consultant-to-executive)"
    },
    "sentence_patterns": ["Pattern 1", "Pattern 2"],
    "vocabulary_level": "Description of technical vocabulary expectations",
    "authority_signals": ["What makes this ICP trust content"],
    "do_list": ["Specific behaviors that resonate with this ICP"],
    "dont_list": ["Anti-patterns that turn off this ICP"],
    "example_phrases": ["Phrases that capture the right tone"],
    "opening_styles": ["Section openers that engage this ICP"]
  }
}

Analyze: {url}`

// analysisPrompt interpolates the validated URL into the prompt template.
func analysisPrompt(validatedURL string) string {
	return strings.ReplaceAll(analysisPromptTemplate, "{url}", validatedURL)
}
