package client

import "testing"

func TestDocumentMetadata_LatestAttachmentPicksMaxOrder(t *testing.T) {
	meta := DocumentMetadata{Attachments: []Attachment{
		{FileName: "v1.md", Order: 0},
		{FileName: "v3.md", Order: 2},
		{FileName: "v2.md", Order: 1},
	}}

	latest, ok := meta.LatestAttachment()
	if !ok {
		t.Fatal("expected an attachment")
	}
	if latest.FileName != "v3.md" {
		t.Errorf("expected v3.md (order 2), got %q", latest.FileName)
	}
}

func TestDocumentMetadata_LatestAttachmentEmpty(t *testing.T) {
	meta := DocumentMetadata{}
	if _, ok := meta.LatestAttachment(); ok {
		t.Error("expected no attachment for an empty list")
	}
}

func TestRepositoryMetadata_DefaultBranchPrefersOwnBranches(t *testing.T) {
	meta := RepositoryMetadata{
		Branches: []Branch{{Name: "dev", DefaultBranch: false}, {Name: "main", DefaultBranch: true}},
		Specification: &RepositorySpecification{
			Branches: []Branch{{Name: "spec-default", DefaultBranch: true}},
		},
	}
	if got := meta.DefaultBranch(); got != "main" {
		t.Errorf("expected repository's own default branch 'main', got %q", got)
	}
}

func TestRepositoryMetadata_DefaultBranchFallsBackToSpecification(t *testing.T) {
	meta := RepositoryMetadata{
		Branches: []Branch{{Name: "dev", DefaultBranch: false}},
		Specification: &RepositorySpecification{
			Branches: []Branch{{Name: "spec-default", DefaultBranch: true}},
		},
	}
	if got := meta.DefaultBranch(); got != "spec-default" {
		t.Errorf("expected specification's default branch, got %q", got)
	}
}

func TestRepositoryMetadata_DefaultBranchNoneFound(t *testing.T) {
	meta := RepositoryMetadata{Branches: []Branch{{Name: "dev", DefaultBranch: false}}}
	if got := meta.DefaultBranch(); got != "" {
		t.Errorf("expected empty string when no default branch exists, got %q", got)
	}
}
