package counters

// CounterType names a game statistic.
type CounterType string

const (
	CounterTurns             CounterType = "turns"
	CounterPlantsBought      CounterType = "plantsBought"
	CounterAnimalsBought     CounterType = "animalsBought"
	CounterHabitatsUnlocked  CounterType = "habitatsUnlocked"
	CounterDisastersDrawn    CounterType = "disastersDrawn"
	CounterExtinctions       CounterType = "extinctions"
	CounterAbilitiesUsed     CounterType = "abilitiesUsed"
	CounterAbilitiesRefreshed CounterType = "abilitiesRefreshed"
	CounterPoliciesResolved  CounterType = "policiesResolved"
	CounterPoliciesCancelled CounterType = "policiesCancelled"
	CounterReshuffles        CounterType = "reshuffles"
	CounterSkippedTurns      CounterType = "skippedTurns"
)
