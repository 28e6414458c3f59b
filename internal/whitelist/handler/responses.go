package handler

import "cubemint/internal/whitelist/service"

type PublishResponse struct {
	Root      string `json:"root"`
	LeafCount int    `json:"leaf_count"`
	Hasher    string `json:"hasher"`
}

type ProofResponse struct {
	Identity string   `json:"identity"`
	Root     string   `json:"root"`
	Proof    []string `json:"proof"`
	Hasher   string   `json:"hasher"`
}

func toProofResponse(res *service.ProofResult) ProofResponse {
	proof := make([]string, len(res.Proof))
	for i, p := range res.Proof {
		proof[i] = p.Hex()
	}
	return ProofResponse{
		Identity: res.Identity.String(),
		Root:     res.Root.Hex(),
		Proof:    proof,
		Hasher:   res.Hasher,
	}
}
