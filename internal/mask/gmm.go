package mask

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/pepper-quality-mcp/internal/imaging"
)

var errNoSamples = errors.New("gmm: no samples")

// covReg is added to covariance diagonals so flat color regions stay
// invertible.
const covReg = 0.01

type gaussian struct {
	logWeight float64
	mean      *mat.VecDense
	inv       *mat.SymDense
	logNorm   float64 // -0.5·(k·log 2π + log|Σ|)
}

// gmm is a Gaussian mixture over RGB colors in [0,255].
type gmm struct {
	comps []gaussian
}

// fitGMM fits at most k components: k-means assigns samples, each cluster
// contributes a full-covariance Gaussian weighted by its share.
func fitGMM(samples []imaging.Vec3, k int) (*gmm, error) {
	if len(samples) == 0 {
		return nil, errNoSamples
	}
	cl := imaging.KMeans(samples, k, 10)
	g := &gmm{}
	for c := range cl.Centers {
		if cl.Sizes[c] == 0 {
			continue
		}
		var members []imaging.Vec3
		for i, l := range cl.Labels {
			if l == c {
				members = append(members, samples[i])
			}
		}
		comp, err := newGaussian(members, float64(len(members))/float64(len(samples)))
		if err != nil {
			return nil, err
		}
		g.comps = append(g.comps, comp)
	}
	if len(g.comps) == 0 {
		return nil, errNoSamples
	}
	return g, nil
}

func newGaussian(members []imaging.Vec3, weight float64) (gaussian, error) {
	n := float64(len(members))
	var mean [3]float64
	for _, p := range members {
		for i := range mean {
			mean[i] += p[i] / n
		}
	}

	cov := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			var s float64
			for _, p := range members {
				s += (p[i] - mean[i]) * (p[j] - mean[j])
			}
			v := s / n
			if i == j {
				v += covReg
			}
			cov.SetSym(i, j, v)
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		for i := 0; i < 3; i++ {
			cov.SetSym(i, i, cov.At(i, i)+1)
		}
		if ok := chol.Factorize(cov); !ok {
			return gaussian{}, errors.New("gmm: covariance not positive definite")
		}
	}
	inv := mat.NewSymDense(3, nil)
	if err := chol.InverseTo(inv); err != nil {
		return gaussian{}, err
	}
	return gaussian{
		logWeight: math.Log(weight),
		mean:      mat.NewVecDense(3, mean[:]),
		inv:       inv,
		logNorm:   -0.5 * (3*math.Log(2*math.Pi) + chol.LogDet()),
	}, nil
}

// nll returns the negative log-likelihood of color x under the mixture.
func (g *gmm) nll(x imaging.Vec3) float64 {
	terms := make([]float64, len(g.comps))
	d := mat.NewVecDense(3, nil)
	for i, c := range g.comps {
		d.SubVec(mat.NewVecDense(3, []float64{x[0], x[1], x[2]}), c.mean)
		terms[i] = c.logWeight + c.logNorm - 0.5*mat.Inner(d, c.inv, d)
	}
	return -floats.LogSumExp(terms)
}
