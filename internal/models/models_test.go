package models

import (
	"strings"
	"testing"
)

func TestCreateItemRequestValidate(t *testing.T) {
	valid := CreateItemRequest{Title: "Lost keys", Description: "Blue keychain", Latitude: 42.1, Longitude: -71.5}
	if errs := valid.Validate(); len(errs) != 0 {
		t.Errorf("valid request rejected: %v", errs)
	}

	missing := CreateItemRequest{Latitude: 42.1, Longitude: -71.5}
	errs := missing.Validate()
	if errs["title"] == "" || errs["description"] == "" {
		t.Errorf("missing fields not reported: %v", errs)
	}

	noLocation := CreateItemRequest{Title: "x", Description: "y"}
	if errs := noLocation.Validate(); errs["location"] == "" {
		t.Errorf("zero coordinates accepted: %v", errs)
	}

	outOfRange := CreateItemRequest{Title: "x", Description: "y", Latitude: 95, Longitude: 200}
	errs = outOfRange.Validate()
	if errs["latitude"] == "" || errs["longitude"] == "" {
		t.Errorf("out-of-range coordinates accepted: %v", errs)
	}
}

func TestCreateListingRequestValidate(t *testing.T) {
	valid := CreateListingRequest{Title: "Bike", Price: 50, Description: "Good condition"}
	if errs := valid.Validate(); len(errs) != 0 {
		t.Errorf("valid request rejected: %v", errs)
	}

	negative := CreateListingRequest{Title: "Bike", Price: -1, Description: "x"}
	if errs := negative.Validate(); errs["price"] == "" {
		t.Errorf("negative price accepted: %v", errs)
	}
}

func TestCreateResourceRequestValidate(t *testing.T) {
	for _, typ := range []string{ResourceTypeNotes, ResourceTypeProject} {
		req := CreateResourceRequest{Title: "CS101 notes", Type: typ}
		if errs := req.Validate(); len(errs) != 0 {
			t.Errorf("type %q rejected: %v", typ, errs)
		}
	}

	req := CreateResourceRequest{Title: "x", Type: "Homework"}
	if errs := req.Validate(); errs["type"] == "" {
		t.Errorf("unknown type accepted: %v", errs)
	}
}

func TestNormalizeLink(t *testing.T) {
	cases := map[string]string{
		"":                        "",
		"  ":                      "",
		"github.com/x":            "https://github.com/x",
		"http://example.com":      "http://example.com",
		"https://example.com/doc": "https://example.com/doc",
	}
	for in, want := range cases {
		if got := NormalizeLink(in); got != want {
			t.Errorf("NormalizeLink(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSendMessageRequestValidate(t *testing.T) {
	valid := SendMessageRequest{ItemID: "i1", ReceiverUID: "u2", Text: "hello"}
	if errs := valid.Validate(); len(errs) != 0 {
		t.Errorf("valid request rejected: %v", errs)
	}

	empty := SendMessageRequest{}
	errs := empty.Validate()
	for _, field := range []string{"item_id", "receiver_uid", "text"} {
		if errs[field] == "" {
			t.Errorf("missing %s not reported: %v", field, errs)
		}
	}

	long := SendMessageRequest{ItemID: "i1", ReceiverUID: "u2", Text: strings.Repeat("a", MaxMessageLength+1)}
	if errs := long.Validate(); errs["text"] == "" {
		t.Errorf("oversized text accepted: %v", errs)
	}

	boundary := SendMessageRequest{ItemID: "i1", ReceiverUID: "u2", Text: strings.Repeat("a", MaxMessageLength)}
	if errs := boundary.Validate(); len(errs) != 0 {
		t.Errorf("max-length text rejected: %v", errs)
	}
}

func TestConversationOtherParticipant(t *testing.T) {
	conv := Conversation{
		Participant1UID:      "u1",
		Participant2UID:      "u2",
		Participant1Email:    "ada@campus.edu",
		Participant2Email:    "bob@campus.edu",
		Participant1Username: "ada",
		Participant2Username: "bob",
	}

	other := conv.OtherParticipant("u1")
	if other.UID != "u2" || other.Email != "bob@campus.edu" || other.Username != "bob" {
		t.Errorf("other of u1 = %+v", other)
	}

	other = conv.OtherParticipant("u2")
	if other.UID != "u1" || other.Username != "ada" {
		t.Errorf("other of u2 = %+v", other)
	}
}

func TestRegisterRequestValidate(t *testing.T) {
	valid := RegisterRequest{Email: "ada@campus.edu", Password: "secret1"}
	if errs := valid.Validate(); len(errs) != 0 {
		t.Errorf("valid request rejected: %v", errs)
	}

	bad := RegisterRequest{Email: "not-an-email", Password: "abc"}
	errs := bad.Validate()
	if errs["email"] == "" || errs["password"] == "" {
		t.Errorf("invalid request accepted: %v", errs)
	}
}
