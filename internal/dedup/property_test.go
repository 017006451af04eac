package dedup

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/gridline-data/locator-cli/internal/model"
)

// genDealer produces dealers drawn from a small pool of phones, domains, and
// states so generated batches actually contain duplicates.
func genDealer() gopter.Gen {
	return gopter.CombineGens(
		gen.AlphaString(),
		gen.OneConstOf("323-555-1234", "9165550000", "(800) 555-0100", "123", ""),
		gen.OneConstOf("", "abcelectric.com", "valleygen.com", "desertsolar.com"),
		gen.OneConstOf("CA", "NV", "TX", "OH", ""),
	).Map(func(vals []interface{}) model.Dealer {
		return model.Dealer{
			Name:   vals[0].(string),
			Phone:  vals[1].(string),
			Domain: vals[2].(string),
			State:  vals[3].(string),
		}
	})
}

func TestRun_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("idempotent: rerunning on output changes nothing", prop.ForAll(
		func(dealers []model.Dealer) bool {
			once := Run(dealers)
			twice := Run(once.Dealers)
			return twice.Removed == 0 && reflect.DeepEqual(once.Dealers, twice.Dealers)
		},
		gen.SliceOf(genDealer()),
	))

	properties.Property("kept plus dropped equals input size", prop.ForAll(
		func(dealers []model.Dealer) bool {
			res := Run(dealers)
			return len(res.Dealers)+len(res.Dropped) == len(dealers) &&
				res.Removed == res.PhoneCount+res.DomainCount+res.FuzzyCount
		},
		gen.SliceOf(genDealer()),
	))

	properties.TestingRun(t)
}
