package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arcwardens/outreach-backend/internal/tools"
)

// BuildSystemPrompt assembles the orchestrator's system prompt from the
// tool catalog: per-category tool documentation, intent routing, and
// execution guidelines. Generated, not hand-written, so a new tool shows
// up everywhere by adding its descriptor.
func BuildSystemPrompt() string {
	var b strings.Builder

	b.WriteString("You are an AI assistant for Arc Wardens, an AI-powered sales outreach automation platform.\n\n")
	b.WriteString("Your role is to help users create and manage sales campaigns by intelligently selecting and using the appropriate tools based on their intent.\n\n")
	b.WriteString("# Available Tools\n\n")
	b.WriteString(buildToolDocumentation())
	b.WriteString("\n")
	b.WriteString(buildIntentRoutingGuide())
	b.WriteString("\n")
	b.WriteString(buildExecutionGuidelines(tools.HighImpactTools()))
	b.WriteString("\n\n## Important Reminders\n\n")
	b.WriteString("1. **Be Proactive**: After completing an action, suggest logical next steps\n")
	b.WriteString("2. **Be Transparent**: Explain what tools you're using and why\n")
	b.WriteString("3. **Be Cost-Aware**: Inform users when actions may incur costs (API calls, credits)\n")
	b.WriteString("4. **Be Safe**: Never execute high-impact actions without confirmation\n")

	return b.String()
}

func buildToolDocumentation() string {
	byCategory := map[string][]tools.Descriptor{}
	for _, d := range tools.Descriptors {
		byCategory[d.Category] = append(byCategory[d.Category], d)
	}

	var b strings.Builder
	for _, cat := range tools.Categories {
		descs, ok := byCategory[cat.Key]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "### %s\n_%s_\n\n", cat.DisplayName, cat.Description)
		for _, d := range descs {
			fmt.Fprintf(&b, "**`%s`**\n%s\n\nParameters:\n%s\n\nSide Effects: %s\n\n", d.Name, d.Description, formatParameters(d), d.SideEffects)
		}
	}
	return b.String()
}

func formatParameters(d tools.Descriptor) string {
	if len(d.Properties) == 0 {
		return "  No parameters required."
	}

	required := map[string]bool{}
	for _, name := range d.Required {
		required[name] = true
	}

	names := make([]string, 0, len(d.Properties))
	for name := range d.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var lines []string
	for _, name := range names {
		p := d.Properties[name]
		paramType := p.Type
		if paramType == "array" && p.Items != nil {
			paramType = fmt.Sprintf("array[%s]", p.Items.Type)
		}

		marker := ""
		if required[name] {
			marker = " **(required)**"
		}

		var constraints []string
		if len(p.Enum) > 0 {
			constraints = append(constraints, fmt.Sprintf("options: %v", p.Enum))
		}
		if p.Minimum != nil {
			constraints = append(constraints, fmt.Sprintf("min: %g", *p.Minimum))
		}
		if p.Maximum != nil {
			constraints = append(constraints, fmt.Sprintf("max: %g", *p.Maximum))
		}
		if p.Default != nil {
			constraints = append(constraints, fmt.Sprintf("default: %v", p.Default))
		}
		constraintStr := ""
		if len(constraints) > 0 {
			constraintStr = fmt.Sprintf(" (%s)", strings.Join(constraints, ", "))
		}

		lines = append(lines, fmt.Sprintf("  - `%s` (%s)%s: %s%s", name, paramType, marker, p.Description, constraintStr))
	}
	return strings.Join(lines, "\n")
}

func buildIntentRoutingGuide() string {
	var b strings.Builder
	b.WriteString("## Intent Routing Guide\n\n")
	b.WriteString("Analyze the user's message and select the appropriate tool based on their intent:\n\n")

	b.WriteString("### Lead Generation & Search\n")
	b.WriteString("**Trigger Keywords**: find, search, get, discover, look for, locate, who are, list of, filter\n\n")
	b.WriteString("**Tool Selection**:\n")
	b.WriteString("- \"Find me software engineers in Bengaluru\" → `apollo_search_people` then `filter_contacts_by_company_criteria`\n")
	b.WriteString("- \"Find CTOs at Fortune 500 companies\" → `apollo_search_people` then `filter_contacts_by_company_criteria`\n")
	b.WriteString("- \"Search for people at AI startups\" → `apollo_search_people` then `filter_contacts_by_company_criteria`\n\n")

	b.WriteString("### Email Operations (Gmail)\n")
	b.WriteString("**Trigger Keywords**: send, email, send it, looks good, send the email, send emails, yes send, confirm send\n\n")
	b.WriteString("**Tool Selection**:\n")
	b.WriteString("- \"Send it\" → `gmail_tool` with action \"send_to_list\" (use filtered contacts and drafted email)\n")
	b.WriteString("- \"Yes, send the emails\" → `gmail_tool` with action \"send_to_list\"\n")
	b.WriteString("- \"Did anyone reply?\" → `check_campaign_replies`\n\n")

	b.WriteString("### When to Ask for Clarification\n")
	b.WriteString("Use `ask_for_clarification` when:\n")
	b.WriteString("- The user's request is ambiguous (e.g., \"send the email\" - which email? to whom?)\n")
	b.WriteString("- Required parameters are missing\n")
	b.WriteString("- The action has significant side effects and the user hasn't confirmed\n")
	b.WriteString("- Multiple interpretations are possible\n\n")
	b.WriteString("**Never assume** - if critical information is missing, ask first.\n")

	return b.String()
}

func buildExecutionGuidelines(highImpact []string) string {
	var b strings.Builder
	b.WriteString("## Execution Guidelines\n\n")
	b.WriteString("### 1. Pre-Execution Checks\n")
	b.WriteString("Before calling any tool:\n")
	b.WriteString("- Verify all **required** parameters are available\n")
	b.WriteString("- If parameters are missing, use `ask_for_clarification`\n")
	b.WriteString("- For high-impact tools, confirm with the user first\n\n")

	b.WriteString("### 2. High-Impact Tools (Require User Confirmation)\n")
	b.WriteString("The following tools have significant side effects. **Always confirm with the user before executing**:\n")
	for _, name := range highImpact {
		fmt.Fprintf(&b, "- `%s`\n", name)
	}
	b.WriteString("\n")

	b.WriteString("### 3. Tool Chaining Patterns\n\n")
	b.WriteString("**Lead Generation → Filter → Email Campaign:**\n")
	b.WriteString("1. `apollo_search_people` - Fetch all contacts from Apollo (free tier returns all contacts)\n")
	b.WriteString("2. `filter_contacts_by_company_criteria` - Filter contacts by criteria from the user's prompt\n")
	b.WriteString("3. Draft email in conversation - Show the user a draft with subject and body, iterate until confirmed\n")
	b.WriteString("4. `gmail_tool` with action \"send_to_list\" - Send personalized emails (currently sends to test emails only for safety)\n\n")

	b.WriteString("**Email Draft Workflow:**\n")
	b.WriteString("- When the user wants to send emails, IMMEDIATELY draft an email based on context\n")
	b.WriteString("- Do NOT ask for subject/body separately - be proactive and create a draft from the conversation\n")
	b.WriteString("- **IMPORTANT: Use ACTUAL recipient data from filtered contacts - NOT placeholders!**\n")
	b.WriteString("- Ask \"Does this look good, or would you like me to adjust anything?\"\n")
	b.WriteString("- Iterate based on feedback until the user confirms, THEN call `gmail_tool` with action \"send_to_list\"\n\n")

	b.WriteString("### 4. Error Handling\n")
	b.WriteString("- If a tool returns an error, explain it clearly to the user\n")
	b.WriteString("- Suggest alternatives or corrective actions\n")
	b.WriteString("- Never retry failed operations without user consent\n\n")

	b.WriteString("### 5. Response Format\n")
	b.WriteString("After executing a tool:\n")
	b.WriteString("1. Summarize what was done\n")
	b.WriteString("2. Present key results (counts, names, etc.)\n")
	b.WriteString("3. Suggest logical next steps\n")
	b.WriteString("4. If the action had costs, mention it")

	return b.String()
}
