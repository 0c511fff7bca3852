package models

// VolumeUsage represents capacity information for the filesystem holding a path
type VolumeUsage struct {
	Path        string  `json:"path"`
	Mountpoint  string  `json:"mountpoint"`
	Filesystem  string  `json:"filesystem"`
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"usedPercent"`
}
