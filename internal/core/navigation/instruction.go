package navigation

import (
	"fmt"
	"math"

	"github.com/samirrijal/campusnav/internal/core/domain"
	"github.com/samirrijal/campusnav/internal/pkg/geospatial"
)

// TurnDeadband is the largest bearing change, in radians (~23°), still reported as straight.
const TurnDeadband = 0.4

// Action classifies the next step.
type Action string

const (
	ActionProceed   Action = "proceed" // start of route, no previous leg
	ActionStraight  Action = "straight"
	ActionTurnLeft  Action = "turn_left"
	ActionTurnRight Action = "turn_right"
	ActionArrived   Action = "arrived"
)

// Directive is the classifier output for one route position.
//
// Bearings are atan2(Δz, Δx) with x east and z north, so a positive (counter-clockwise)
// change of bearing is a left turn.
type Directive struct {
	Action Action `json:"action"`
	From   string `json:"from"`
	To     string `json:"to,omitempty"`

	// Distance is metres from current to next; Bearing is the direction of the next leg
	// and Delta the signed bearing change, both in radians.
	Distance float64 `json:"distance"`
	Bearing  float64 `json:"bearing"`
	Delta    float64 `json:"delta,omitempty"`

	WrongWay bool `json:"wrong_way"`
}

// Text renders the directive for display.
func (d Directive) Text() string {
	switch d.Action {
	case ActionArrived:
		return fmt.Sprintf("You have arrived at %s", d.From)
	case ActionProceed:
		return fmt.Sprintf("Proceed to %s, %.0f m", d.To, d.Distance)
	case ActionTurnLeft:
		return fmt.Sprintf("Turn left, then walk %.0f m to %s", d.Distance, d.To)
	case ActionTurnRight:
		return fmt.Sprintf("Turn right, then walk %.0f m to %s", d.Distance, d.To)
	default:
		return fmt.Sprintf("Go straight for %.0f m to %s", d.Distance, d.To)
	}
}

// Classify derives the directive at cur from the legs prev→cur and cur→next.
// An empty prev or next marks the start or end of the route.
func Classify(g *domain.Graph, prev, cur, next string) (Directive, error) {
	cp, err := g.Coordinates(cur)
	if err != nil {
		return Directive{}, err
	}
	if next == "" {
		return Directive{Action: ActionArrived, From: cur}, nil
	}
	np, err := g.Coordinates(next)
	if err != nil {
		return Directive{}, err
	}

	d := Directive{
		From:     cur,
		To:       next,
		Distance: geospatial.Euclidean(cp.X, cp.Z, np.X, np.Z),
		Bearing:  geospatial.Bearing(cp.X, cp.Z, np.X, np.Z),
	}
	if prev == "" {
		d.Action = ActionProceed
		return d, nil
	}

	pp, err := g.Coordinates(prev)
	if err != nil {
		return Directive{}, err
	}
	in := geospatial.Bearing(pp.X, pp.Z, cp.X, cp.Z)
	d.Delta = geospatial.NormalizeAngle(d.Bearing - in)

	d.Action = TurnAction(d.Delta)
	return d, nil
}

// TurnAction maps a signed bearing change onto a turn. A change of exactly TurnDeadband
// either way is still straight.
func TurnAction(delta float64) Action {
	switch {
	case delta > TurnDeadband:
		return ActionTurnLeft
	case delta < -TurnDeadband:
		return ActionTurnRight
	default:
		return ActionStraight
	}
}

// ClassifyState is Classify applied at the session's cursor.
// An arrived session short-circuits to ActionArrived.
func ClassifyState(g *domain.Graph, st State) (Directive, error) {
	if st.Arrived {
		return Directive{Action: ActionArrived, From: st.Current}, nil
	}
	return Classify(g, st.Previous, st.Current, st.Next)
}

// HeadingFromCompass converts a compass reading in degrees to the route bearing frame, in radians.
func HeadingFromCompass(deg float64) float64 {
	return geospatial.NormalizeAngle((360 - deg) * math.Pi / 180)
}
