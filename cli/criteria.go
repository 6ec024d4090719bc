package cli

import (
	"net/url"

	"github.com/spf13/pflag"
)

const flatModelFlag = "flat-model"

// criteriaFlags mirror the dashboard's query parameters. Values are parsed by
// server.ParseCriteria so the CLI and the HTTP shell accept the same input.
var criteriaFlags = []struct {
	name, param, usage string
}{
	{"town", "town", `town, e.g. "BUKIT MERAH"`},
	{"flat-type", "flat_type", `flat type, e.g. "4 ROOM"`},
	{"storey-min", "storey_min", "lowest storey"},
	{"storey-max", "storey_max", "highest storey"},
	{"area-min", "area_min", "smallest floor area in sqm"},
	{"area-max", "area_max", "largest floor area in sqm"},
	{"lease-min", "lease_min", "fewest remaining lease years"},
	{"lease-max", "lease_max", "most remaining lease years"},
	{"month-start", "month_start", "first sale month, YYYY-MM"},
	{"month-end", "month_end", "last sale month, YYYY-MM"},
}

func addCriteriaFlags(fs *pflag.FlagSet) {
	for _, f := range criteriaFlags {
		fs.String(f.name, "", f.usage)
	}
	fs.StringArray(flatModelFlag, nil, `flat model to include, repeatable; --flat-model "" selects none`)
}

// criteriaQuery turns the criteria flags the user actually set into the
// query parameters ParseCriteria understands.
func criteriaQuery(fs *pflag.FlagSet) url.Values {
	q := url.Values{}
	for _, f := range criteriaFlags {
		if !fs.Changed(f.name) {
			continue
		}
		v, _ := fs.GetString(f.name)
		q.Set(f.param, v)
	}
	if fs.Changed(flatModelFlag) {
		models, _ := fs.GetStringArray(flatModelFlag)
		if len(models) == 0 {
			models = []string{""}
		}
		q["flat_model"] = models
	}
	return q
}
