package tools

import "strings"

// Property is one input-schema field of a tool.
type Property struct {
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Items       *Property   `json:"items,omitempty"`
	Enum        []string    `json:"enum,omitempty"`
	Minimum     *float64    `json:"minimum,omitempty"`
	Maximum     *float64    `json:"maximum,omitempty"`
	Default     interface{} `json:"default,omitempty"`
}

// Descriptor is the static definition of a tool: everything the prompt
// builder, the validator, and the payment gate need to know about it.
type Descriptor struct {
	Name        string
	Description string
	Properties  map[string]Property
	Required    []string
	SideEffects string
	Category    string
	CostInfo    string

	// Paid tools are deferred behind the payment gate; their price must
	// exist in Costs or the gate fails closed.
	Paid bool
}

// Tool categories used for prompt grouping.
const (
	CategoryLeadGeneration  = "lead_generation"
	CategoryEmailOperations = "email_operations"
	CategoryUtility         = "utility"
)

// CategoryInfo labels a category in the generated prompt.
type CategoryInfo struct {
	Key         string
	DisplayName string
	Description string
}

// Categories is the ordered category list for prompt generation.
var Categories = []CategoryInfo{
	{Key: CategoryLeadGeneration, DisplayName: "Lead Generation & Search", Description: "Find and filter contacts"},
	{Key: CategoryEmailOperations, DisplayName: "Email Operations (Gmail)", Description: "Send campaign emails and track replies"},
	{Key: CategoryUtility, DisplayName: "Utility", Description: "Helper tools for clarification and automation"},
}

// Costs is the price per invocation for tools whose execution requires
// payment. A tool absent from this table is free. A paid tool with no
// entry is a configuration error surfaced at gate time, never a free
// execution.
var Costs = map[string]float64{
	"apollo_search_people": 1.0,
	"gmail_tool":           2.0,
}

func float(v float64) *float64 { return &v }

// Descriptors is the ordered tool catalog presented to the model.
var Descriptors = []Descriptor{
	{
		Name:        "apollo_search_people",
		Description: "Search for people/contacts in the Apollo database. Use when the user wants to find leads, contacts, or people matching criteria like job titles, companies, or locations. Returns matching contacts with their professional information.",
		Properties: map[string]Property{
			"query": {
				Type:        "string",
				Description: "Natural language search query (e.g., 'software engineers at Google', 'CTOs in fintech startups')",
			},
			"person_titles": {
				Type:        "array",
				Items:       &Property{Type: "string"},
				Description: "List of job titles to filter by (e.g., ['CEO', 'CTO', 'VP of Sales'])",
			},
			"person_locations": {
				Type:        "array",
				Items:       &Property{Type: "string"},
				Description: "List of locations to filter by (e.g., ['New York', 'San Francisco', 'London'])",
			},
			"limit": {
				Type:        "integer",
				Default:     25,
				Minimum:     float(1),
				Maximum:     float(100),
				Description: "Maximum number of results to return (default: 25)",
			},
		},
		Required:    []string{"query"},
		SideEffects: "Makes API call to Apollo. May incur API costs based on usage.",
		Category:    CategoryLeadGeneration,
		CostInfo:    "Credits consumed per search",
		Paid:        true,
	},
	{
		Name:        "filter_contacts_by_company_criteria",
		Description: "Filter the campaign's fetched contacts based on criteria from the user's prompt using AI. Use after apollo_search_people when the user specified filters like job title, location, or company traits ('Fortune 500', 'Series C startups', 'AI native companies'). Saves the filtered list to the campaign.",
		Properties: map[string]Property{
			"user_prompt": {
				Type:        "string",
				Description: "The original user prompt containing the filtering criteria",
			},
		},
		Required:    []string{"user_prompt"},
		SideEffects: "Uses the language model for filtering. Overwrites the campaign's saved contact list with the filtered subset.",
		Category:    CategoryLeadGeneration,
		CostInfo:    "One model call per filter operation",
	},
	{
		Name:        "gmail_tool",
		Description: "Send campaign emails via Gmail. Use action 'send_to_list' to send the drafted email to the campaign's filtered contacts, personalized per recipient with {name}, {company} and {title} placeholders.",
		Properties: map[string]Property{
			"action": {
				Type:        "string",
				Enum:        []string{"send_to_list", "draft"},
				Description: "Action to perform: 'send_to_list' sends the campaign email, 'draft' returns the rendered preview without sending",
			},
			"subject": {
				Type:        "string",
				Description: "Email subject line (may include {name}, {company}, {title} placeholders)",
			},
			"body": {
				Type:        "string",
				Description: "Email body template with {name}, {company}, {title} placeholders for personalization",
			},
		},
		Required:    []string{"action", "subject", "body"},
		SideEffects: "SENDS EMAILS IMMEDIATELY when action is send_to_list. Cannot be undone. Always confirm the draft with the user before executing.",
		Category:    CategoryEmailOperations,
		CostInfo:    "Subject to Gmail sending limits",
		Paid:        true,
	},
	{
		Name:        "check_campaign_replies",
		Description: "Scan the user's inbox for replies to this campaign's outreach emails. Records new replies and updates the campaign's reply counter.",
		Properties:  map[string]Property{},
		Required:    nil,
		SideEffects: "Reads the user's mailbox and records matched replies. No messages are modified.",
		Category:    CategoryEmailOperations,
		CostInfo:    "No cost",
	},
	{
		Name:        "ask_for_clarification",
		Description: "Ask the user for clarification when their request is ambiguous, incomplete, or when critical information is missing. Use this instead of making assumptions.",
		Properties: map[string]Property{
			"question": {
				Type:        "string",
				Description: "Clear, specific question to ask the user",
			},
			"context": {
				Type:        "string",
				Description: "Brief explanation of why this information is needed",
			},
			"options": {
				Type:        "array",
				Items:       &Property{Type: "string"},
				Description: "Optional list of choices to present to the user",
			},
		},
		Required:    []string{"question"},
		SideEffects: "None. This is a communication tool.",
		Category:    CategoryUtility,
		CostInfo:    "No cost",
	},
	{
		Name:        "repeat_campaign_action",
		Description: "Repeat a previously executed campaign action. Use when the user wants to re-run a search or repeat any previous action with the same or modified parameters.",
		Properties: map[string]Property{
			"campaign_id": {
				Type:        "string",
				Description: "ID of the campaign containing the action to repeat",
			},
			"action_type": {
				Type:        "string",
				Enum:        []string{"search_leads", "filter_contacts", "send_emails"},
				Description: "Type of action to repeat",
			},
			"modified_params": {
				Type:        "object",
				Description: "Optional modified parameters for the repeated action (overrides original params)",
			},
		},
		Required:    []string{"campaign_id", "action_type"},
		SideEffects: "Executes the specified action again. Side effects depend on the action type.",
		Category:    CategoryUtility,
		CostInfo:    "Depends on the action being repeated",
	},
}

// DescriptorByName returns the descriptor for a tool, or nil.
func DescriptorByName(name string) *Descriptor {
	for i := range Descriptors {
		if Descriptors[i].Name == name {
			return &Descriptors[i]
		}
	}
	return nil
}

var highImpactKeywords = []string{"send", "overwrite", "cannot be undone", "confirm"}

// HighImpactTools derives the set of tools requiring explicit user
// confirmation from their documented side effects.
func HighImpactTools() []string {
	var names []string
	for _, d := range Descriptors {
		effects := strings.ToLower(d.SideEffects)
		for _, keyword := range highImpactKeywords {
			if strings.Contains(effects, keyword) {
				names = append(names, d.Name)
				break
			}
		}
	}
	return names
}

// ParametersSchema renders the descriptor's input schema as the
// JSON-schema object shape the model API expects.
func (d *Descriptor) ParametersSchema() map[string]interface{} {
	if len(d.Properties) == 0 {
		return nil
	}
	props := map[string]interface{}{}
	for name, p := range d.Properties {
		props[name] = p.schema()
	}
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(d.Required) > 0 {
		schema["required"] = d.Required
	}
	return schema
}

func (p Property) schema() map[string]interface{} {
	out := map[string]interface{}{"type": p.Type}
	if p.Description != "" {
		out["description"] = p.Description
	}
	if p.Items != nil {
		out["items"] = p.Items.schema()
	}
	if len(p.Enum) > 0 {
		out["enum"] = p.Enum
	}
	return out
}
