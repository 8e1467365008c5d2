package narration

import (
	"fmt"

	"github.com/annel0/indoor-nav/internal/building"
)

const (
	openerText    = "Start navigation. Please follow the guidance"
	arrivalText   = "You have reached your destination"
	arrivedAtText = "You have arrived at %s"
)

// FallbackInstructions выдаются, когда маршрут нельзя озвучить
var FallbackInstructions = []string{
	"Start navigation",
	"Please navigate manually according to the map",
	"You have reached your destination",
}

func arrival(target string) string {
	if target == "" {
		return arrivalText
	}
	return fmt.Sprintf(arrivedAtText, target)
}

func walkText(n int) string {
	if n == 1 {
		return "Walk 1 step forward"
	}
	return fmt.Sprintf("Walk %d steps forward", n)
}

// verticalTexts три фазы перехода: подготовка, движение, прибытие
func verticalTexts(link *building.VerticalLink, dir building.Direction, floor int) [3]string {
	switch link.Type {
	case building.LinkStair:
		return [3]string{
			fmt.Sprintf("There is a stair ahead, prepare to go %s to floor %d", dir, floor),
			fmt.Sprintf("Going %s, %d steps in total, please be careful", dir, link.Steps),
			fmt.Sprintf("Stair ends, you are on floor %d", floor),
		}
	case building.LinkElevator:
		return [3]string{
			"Arrived at the elevator, please wait for the elevator",
			fmt.Sprintf("Take the elevator %s to floor %d", dir, floor),
			fmt.Sprintf("Elevator arrived at floor %d, please exit the elevator", floor),
		}
	case building.LinkEscalator:
		return [3]string{
			fmt.Sprintf("There is an escalator ahead, prepare to go %s to floor %d", dir, floor),
			fmt.Sprintf("Ride the escalator %s, please hold the handrail", dir),
			fmt.Sprintf("Escalator ends, you are on floor %d", floor),
		}
	default:
		return [3]string{
			fmt.Sprintf("There is a %s ahead, prepare to go %s to floor %d", link.Type, dir, floor),
			fmt.Sprintf("Follow the %s %s", link.Type, dir),
			fmt.Sprintf("You are on floor %d", floor),
		}
	}
}
