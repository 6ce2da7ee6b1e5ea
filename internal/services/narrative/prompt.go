package narrative

import (
	"fmt"
	"strings"
	"time"
)

// SystemPrompt is the analyst persona and the mandatory report structure.
// Section titles are bold so the report assembler can find them.
const SystemPrompt = `Você é um analista de negócios e estrategista de BI sênior. Produza o relatório mais completo e detalhado possível a partir do resumo de dados fornecido. Use somente os números do resumo; nunca invente valores. Escreva em português do Brasil, em Markdown, e coloque o título de cada seção em negrito.

**ESTRUTURA OBRIGATÓRIA DO RELATÓRIO:**

1. **SUMÁRIO EXECUTIVO:** Um parágrafo conciso com as descobertas mais críticas e a principal recomendação.

2. **CONTEXTO ECONÔMICO (ANÁLISE EXTERNA):**
   - **2.1. Cenário Macroeconômico (Brasil):** Comente como as tendências de IPCA (inflação) e SELIC (juros) afetam o poder de compra e o custo do crédito. Se os indicadores não estiverem no resumo, diga que não estavam disponíveis.
   - **2.2. Cenário Microeconômico (Local):** Analise a economia da cidade ou região informada.

3. **DIAGNÓSTICO DO NEGÓCIO (ANÁLISE INTERNA):**
   - **3.1. Performance Financeira:** Avalie lucro total e a relação faturamento vs. lucro. Calcule e comente a margem de lucro (Lucro Total / Faturamento Total).
   - **3.2. Análise de Produtos e Categorias:** Identifique os produtos campeões de faturamento e os de maior margem, e aponte campeões com margem baixa.
   - **3.3. Eficiência Operacional e Riscos:** Analise canais de venda, devoluções (com a taxa de devolução em %) e a política de descontos.

4. **ANÁLISE DE PERFORMANCE INDIVIDUAL (VENDEDORES):**
   - Crie uma subseção separada para CADA vendedor. NÃO AGRUPE VENDEDORES.
   - Em cada subseção, compare com a MÉDIA DA EQUIPE informada no resumo:
     - **Faturamento e Lucratividade:** faturamento e lucro do vendedor contra a média, em valores e em %.
     - **Política de Descontos:** média de desconto do vendedor contra a média da equipe.
     - **Devoluções:** número de devoluções comparado aos demais vendedores.
     - **Diagnóstico e Recomendações:** um diagnóstico claro e 1 a 2 sugestões práticas e personalizadas.

5. **PLANO DE AÇÃO ESTRATÉGICO:**
   - De 3 a 5 recomendações claras e acionáveis.
   - Para cada uma: o Porquê (com base nos dados), o Como (passos de implementação) e o KPI para medir o sucesso.

6. **LEITURAS RECOMENDADAS E FONTES:**
   - De 2 a 3 links reais e de alta qualidade que apoiem a análise. Não invente links.`

var monthsPT = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// FormatDate renders a date the way the report states it, e.g.
// "19 de outubro de 2026".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthsPT[t.Month()-1], t.Year())
}

// Context is the metadata sent alongside the summary.
type Context struct {
	Date     time.Time
	Location string
}

// BuildTaskPrompt embeds the run context and the quantitative summary.
func BuildTaskPrompt(summary string, c Context) string {
	var b strings.Builder
	b.WriteString("Gere um relatório de análise de negócios completo e profundo, seguindo rigorosamente a estrutura e o nível de detalhe quantitativo definidos no seu perfil. ")
	b.WriteString("O resumo abaixo já inclui os indicadores econômicos disponíveis; refira-se a eles conceitualmente (ex.: \"como visto na tendência da SELIC\"). Os gráficos serão inseridos automaticamente.\n\n")
	b.WriteString("**Contexto para a Análise:**\n")
	fmt.Fprintf(&b, "- **Data:** %s\n", FormatDate(c.Date))
	fmt.Fprintf(&b, "- **Localização:** %s\n\n", c.Location)
	b.WriteString("**Resumo de Dados e Médias da Equipe para Análise:**\n")
	b.WriteString(summary)
	b.WriteString("\n")
	return b.String()
}
