// Package gate реализует навигационный гейт — чистую функцию решения,
// отображающую (сессия, подписочный статус, запрошенный маршрут) в один
// из исходов: ждать, редиректить или рендерить запрошенное.
//
// Таблица решений упорядочена, побеждает первое совпавшее правило.
// Функция свободна от побочных эффектов и пересчитывается на каждое
// изменение любого входа.
package gate

import (
	"github.com/nosugarclub/nosugar-api/internal/entitlement"
	"github.com/nosugarclub/nosugar-api/internal/session"
)

// Route — группа маршрутов клиента.
type Route string

const (
	// RouteLanding — стартовый экран для неавторизованных.
	RouteLanding Route = "landing"
	// RouteAuthFlow — экраны входа и онбординга.
	RouteAuthFlow Route = "auth"
	// RoutePaywall — экран покупки подписки.
	RoutePaywall Route = "paywall"
	// RouteTabs — защищённые вкладки приложения.
	RouteTabs Route = "tabs"
)

// Outcome — вид решения гейта.
type Outcome string

const (
	// OutcomeAwait — состояние ещё устанавливается, ничего не рендерить.
	OutcomeAwait Outcome = "await"
	// OutcomeRedirect — перенаправить на Target.
	OutcomeRedirect Outcome = "redirect"
	// OutcomeRender — показать запрошенный маршрут.
	OutcomeRender Outcome = "render"
)

// Decision — результат вычисления гейта.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	Target  Route   `json:"target,omitempty"` // Заполнен только для redirect
}

func await() Decision {
	return Decision{Outcome: OutcomeAwait}
}

func redirect(target Route) Decision {
	return Decision{Outcome: OutcomeRedirect, Target: target}
}

func render() Decision {
	return Decision{Outcome: OutcomeRender}
}

// Decide вычисляет решение гейта для запрошенного маршрута.
func Decide(sess session.Snapshot, ent entitlement.Status, route Route) Decision {
	// 1. Сессия ещё не установилась — никаких решений.
	if !sess.Settled {
		return await()
	}

	// 2. Лендинг или пейволл с активной сессией, но неизвестным статусом
	// подписки: дефолт "не Pro" здесь недопустим, ждём биллинг.
	if (route == RouteLanding || route == RoutePaywall) && sess.Present && !ent.Known() {
		return await()
	}

	// 3. Защищённые вкладки при неизвестном статусе подписки.
	if route == RouteTabs && !ent.Known() {
		return await()
	}

	// 4. Авторизованный пользователь на лендинге уходит по статусу подписки.
	if route == RouteLanding && sess.Present {
		if ent.IsPro {
			return redirect(RouteTabs)
		}
		return redirect(RoutePaywall)
	}

	// 5. Pro на пейволле делать нечего.
	if route == RoutePaywall && sess.Present && ent.IsPro {
		return redirect(RouteTabs)
	}

	// 6. Вкладки без подтверждённого Pro закрыты.
	if route == RouteTabs && !ent.IsPro {
		return redirect(RoutePaywall)
	}

	// 7. Вкладки без сессии — на лендинг.
	if route == RouteTabs && !sess.Present {
		return redirect(RouteLanding)
	}

	// 8. Препятствий нет.
	return render()
}
