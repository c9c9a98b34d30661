// Package papers maps cited document names to their canonical library
// URLs. The backend's plain query endpoint returns only a path and a
// name; this table lets the UI link well-known papers anyway.
package papers

import "strings"

var urlByName = map[string]string{
	"A Clinical Severity Index for Eosinophilic Esophagitis.pdf":                       "https://rdcrn.app.box.com/file/1806944500611",
	"A Deep Multi-Label Segmentation Network For Eosinophilic.pdf":                     "https://rdcrn.app.box.com/file/1806944461539",
	"Alignment of parent- and child-reported outcomes and histology in eosinophilic esophagitis across multiple CEGIR sites.pdf": "https://rdcrn.app.box.com/file/1806930362344",
	"Allergic mechanisms of Eosinophilic oesophagitis.pdf":                             "https://rdcrn.app.box.com/file/1806947471313",
	"Assessing Adherence and Barriers to Long-Term Elimination Diet Therapy in Adults with Eosinophilic Esophagitis.pdf": "https://rdcrn.app.box.com/file/1806946955778",
	"Antifibrotic Effects of the Thiazolidinediones in Eosinophilic Esophagitis Pathologic Remodeling_ A Preclinical Evaluation.pdf": "https://rdcrn.app.box.com/file/1806945829739",
	"A Comparative Analysis of Eating Behavior of School-Aged Children with Eosinophilic Esophagitis and Their Caregivers_ Quality of Life_ Perspectives of Caregivers.pdf": "https://rdcrn.app.box.com/file/1806947473266",
	"A novel approach to conducting clinical trials in the community setting_ utilizing patient-driven platforms and social media to drive web-based patient recruitment.pdf": "https://rdcrn.app.box.com/file/1806932521580",
}

// URL returns the library URL for a source name, or "" when the paper is
// not in the table. Matching ignores surrounding whitespace and is
// tolerant of a missing .pdf suffix.
func URL(sourceName string) string {
	name := strings.TrimSpace(sourceName)
	if u, ok := urlByName[name]; ok {
		return u
	}
	if !strings.HasSuffix(name, ".pdf") {
		if u, ok := urlByName[name+".pdf"]; ok {
			return u
		}
	}
	return ""
}
