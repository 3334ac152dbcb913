package orderdto

type CleanupOutput struct {
	Deleted int      `json:"deleted"`
	Codes   []string `json:"codes"`
}
