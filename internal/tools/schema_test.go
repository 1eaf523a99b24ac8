package tools

import (
	"reflect"
	"testing"
)

func TestHighImpactToolsDerivedFromSideEffects(t *testing.T) {
	got := HighImpactTools()
	want := []string{"filter_contacts_by_company_criteria", "gmail_tool"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("HighImpactTools() = %v, want %v", got, want)
	}
}

func TestPaidToolsHaveCosts(t *testing.T) {
	for _, d := range Descriptors {
		if !d.Paid {
			continue
		}
		if _, ok := Costs[d.Name]; !ok {
			t.Errorf("paid tool %s has no entry in Costs", d.Name)
		}
	}
}

func TestDescriptorByName(t *testing.T) {
	if d := DescriptorByName("gmail_tool"); d == nil || d.Name != "gmail_tool" {
		t.Fatalf("DescriptorByName(gmail_tool) = %v", d)
	}
	if d := DescriptorByName("no_such_tool"); d != nil {
		t.Fatalf("DescriptorByName(no_such_tool) = %v, want nil", d)
	}
}

func TestParametersSchema(t *testing.T) {
	d := DescriptorByName("apollo_search_people")
	schema := d.ParametersSchema()
	if schema["type"] != "object" {
		t.Fatalf("schema type = %v", schema["type"])
	}
	props, ok := schema["properties"].(map[string]interface{})
	if !ok {
		t.Fatalf("schema has no properties map")
	}
	if _, ok := props["query"]; !ok {
		t.Errorf("schema missing query property")
	}
	required, ok := schema["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "query" {
		t.Errorf("schema required = %v", schema["required"])
	}

	// A tool with no inputs declares no schema at all.
	if s := DescriptorByName("check_campaign_replies").ParametersSchema(); s != nil {
		t.Errorf("check_campaign_replies schema = %v, want nil", s)
	}
}
